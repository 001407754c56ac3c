package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultRollingWindow is the number of latest flips used for rolling averages.
	DefaultRollingWindow = 10

	// maxFlipCount is a sanity bound, nobody flips one item this often.
	maxFlipCount = 10_000_000
)

// AggregateStat accumulates the completed flips of a single item.
//
// Observations are appended in trade index order. Averages are 0 for an
// item without completed flips.
type AggregateStat struct {
	Name string

	profits          []int64
	totalProfit      int64
	totalROI         float64
	totalItemCount   int64
	cancelled        int
	latestTradeIndex int
}

// NewAggregateStat creates an empty accumulator for the named item.
func NewAggregateStat(name string) *AggregateStat {
	return &AggregateStat{Name: name}
}

// AddData folds one completed flip into the accumulator.
//
// Parameters:
//   - profit: realized profit of the flip.
//   - roi: return on investment in percent.
//   - itemCount: quantity traded.
//   - tradeIndex: position of the flip in the full log.
func (s *AggregateStat) AddData(profit int64, roi float64, itemCount int64, tradeIndex int) {
	s.profits = append(s.profits, profit)
	s.totalProfit += profit
	s.totalROI += roi
	s.totalItemCount += itemCount

	if tradeIndex > s.latestTradeIndex {
		s.latestTradeIndex = tradeIndex
	}

	if len(s.profits) >= maxFlipCount {
		panic(fmt.Sprintf("stats: %q has %d flips, exceeds sanity bound", s.Name, len(s.profits)))
	}
}

// IncCancelCount records a cancelled flip. Profit accumulators are untouched.
func (s *AggregateStat) IncCancelCount() {
	s.cancelled++
}

// FlipCount is the number of completed flips.
func (s *AggregateStat) FlipCount() int {
	return len(s.profits)
}

// TotalProfit is the signed sum of all observed profits.
func (s *AggregateStat) TotalProfit() int64 {
	return s.totalProfit
}

func (s *AggregateStat) AvgProfit() float64 {
	if len(s.profits) == 0 {
		return 0
	}
	return float64(s.totalProfit) / float64(len(s.profits))
}

// RollingAvgProfit averages the last window profits, or all of them when
// fewer exist. A window of 0 averages every observation.
func (s *AggregateStat) RollingAvgProfit(window int) float64 {
	if window < 0 {
		panic(fmt.Sprintf("stats: negative rolling window %d", window))
	}
	if len(s.profits) == 0 {
		return 0
	}

	first := 0
	if window > 0 && len(s.profits) > window {
		first = len(s.profits) - window
	}

	var total int64
	for _, p := range s.profits[first:] {
		total += p
	}
	return float64(total) / float64(len(s.profits)-first)
}

func (s *AggregateStat) AvgROI() float64 {
	if len(s.profits) == 0 {
		return 0
	}
	return s.totalROI / float64(len(s.profits))
}

// AvgBuyLimit is the average quantity per completed flip.
func (s *AggregateStat) AvgBuyLimit() float64 {
	if len(s.profits) == 0 {
		return 0
	}
	return float64(s.totalItemCount) / float64(len(s.profits))
}

// ProfitableFlipCount counts flips with a strictly positive profit.
func (s *AggregateStat) ProfitableFlipCount() int {
	n := 0
	for _, p := range s.profits {
		if p > 0 {
			n++
		}
	}
	return n
}

// ProfitableRatio is ProfitableFlipCount / FlipCount.
func (s *AggregateStat) ProfitableRatio() float64 {
	if len(s.profits) == 0 {
		return 0
	}
	return float64(s.ProfitableFlipCount()) / float64(len(s.profits))
}

func (s *AggregateStat) CancelledFlipCount() int {
	return s.cancelled
}

// CancellationRatio is cancelled / (cancelled + completed), 0 without any data.
func (s *AggregateStat) CancellationRatio() float64 {
	total := s.cancelled + len(s.profits)
	if total == 0 {
		return 0
	}
	return float64(s.cancelled) / float64(total)
}

// ProfitStdDev is the population standard deviation of the profits.
func (s *AggregateStat) ProfitStdDev() float64 {
	if len(s.profits) == 0 {
		return 0
	}
	x := make([]float64, len(s.profits))
	for i, p := range s.profits {
		x[i] = float64(p)
	}
	return stat.PopStdDev(x, nil)
}

// LatestTradeIndex is the highest trade index folded into this item.
func (s *AggregateStat) LatestTradeIndex() int {
	return s.latestTradeIndex
}

// Profits returns the observations in trade order. Callers must not modify it.
func (s *AggregateStat) Profits() []int64 {
	return s.profits
}
