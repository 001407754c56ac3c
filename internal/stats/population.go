package stats

import (
	"github.com/guttosm/flippulse/internal/domain/models"
	"github.com/guttosm/flippulse/internal/margin"
)

// Population is the result of one aggregation pass over a flip log.
// It is rebuilt from scratch whenever the log changes.
type Population struct {
	items map[string]*AggregateStat
	order []*AggregateStat

	// Ranges holds the min/max of the averaged metrics over traded items.
	Ranges Ranges

	// TotalFlips is the highest trade index of any completed flip.
	TotalFlips int

	// Transactions is the length of the aggregated log.
	Transactions int
}

// Aggregate folds the flip log into per-item statistics in one pass.
//
// Behavior:
//   - Cancelled flips only bump the cancellation counter of their item.
//   - Flips that are not done yet are skipped.
//   - Completed flips add profit, ROI, quantity and their log index.
//
// Ranges are computed once all flips are folded in.
func Aggregate(flips []models.Flip) *Population {
	p := &Population{
		items:        make(map[string]*AggregateStat),
		Transactions: len(flips),
	}

	for i, f := range flips {
		if f.Cancelled {
			p.entry(f.Item).IncCancelCount()
			continue
		}
		if !f.Done {
			continue
		}

		p.entry(f.Item).AddData(margin.FlipProfit(f), margin.FlipROI(f), f.Limit, i)
		if i > p.TotalFlips {
			p.TotalFlips = i
		}
	}

	p.Ranges = ComputeRanges(p.Stats())
	return p
}

func (p *Population) entry(name string) *AggregateStat {
	s, ok := p.items[name]
	if !ok {
		s = NewAggregateStat(name)
		p.items[name] = s
		p.order = append(p.order, s)
	}
	return s
}

// Stats returns every item with at least one completed flip, in order of
// first appearance in the log. The slice is a fresh copy.
func (p *Population) Stats() []*AggregateStat {
	out := make([]*AggregateStat, 0, len(p.order))
	for _, s := range p.order {
		if s.FlipCount() > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Lookup returns the statistics of an item, including items that were
// only ever cancelled.
func (p *Population) Lookup(name string) (*AggregateStat, bool) {
	s, ok := p.items[name]
	return s, ok
}

// Len is the number of traded items.
func (p *Population) Len() int {
	return len(p.Stats())
}

// Filter returns a population restricted to items with at least minFlips
// completed flips. Ranges are recomputed for the subset, totals are kept.
func (p *Population) Filter(minFlips int) *Population {
	out := &Population{
		items:        make(map[string]*AggregateStat),
		TotalFlips:   p.TotalFlips,
		Transactions: p.Transactions,
	}
	for _, s := range p.order {
		if s.FlipCount() >= minFlips && s.FlipCount() > 0 {
			out.items[s.Name] = s
			out.order = append(out.order, s)
		}
	}
	out.Ranges = ComputeRanges(out.order)
	return out
}
