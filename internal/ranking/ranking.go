package ranking

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/guttosm/flippulse/internal/scoring"
	"github.com/guttosm/flippulse/internal/stats"
)

// Metric selects what items are ranked by.
type Metric int

const (
	MetricROI Metric = iota
	MetricProfit
	MetricRecommendation
)

// ParseMetric accepts "roi", "profit" and "recommendation".
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "roi":
		return MetricROI, nil
	case "profit", "":
		return MetricProfit, nil
	case "recommendation", "tips":
		return MetricRecommendation, nil
	default:
		return MetricProfit, fmt.Errorf("unknown ranking metric %q", s)
	}
}

func (m Metric) String() string {
	switch m {
	case MetricROI:
		return "roi"
	case MetricRecommendation:
		return "recommendation"
	default:
		return "profit"
	}
}

// Ranked pairs an item with the value it was ranked by.
type Ranked struct {
	Stat  *stats.AggregateStat
	Score float64
}

// Rank orders the traded items of a population descending by metric.
// Ties keep the population order.
//
// For MetricRecommendation items with a single flip are dropped, and the
// scorer is required. Other metrics ignore the scorer.
func Rank(pop *stats.Population, metric Metric, scorer scoring.Scorer) []Ranked {
	items := pop.Stats()
	out := make([]Ranked, 0, len(items))

	for _, s := range items {
		var v float64
		switch metric {
		case MetricROI:
			v = s.AvgROI()
		case MetricRecommendation:
			if s.FlipCount() == 1 {
				continue
			}
			v = scorer.Score(s, pop)
		default:
			v = s.AvgProfit()
		}
		if math.IsNaN(v) {
			v = math.Inf(-1)
		}
		out = append(out, Ranked{Stat: s, Score: v})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Stats strips the scores from a ranking.
func Stats(ranked []Ranked) []*stats.AggregateStat {
	out := make([]*stats.AggregateStat, len(ranked))
	for i, r := range ranked {
		out[i] = r.Stat
	}
	return out
}

// ErrInsufficientData is returned when the log is too small to rank.
var ErrInsufficientData = errors.New("not enough flips to recommend anything")

// Options are the presentation filters applied on top of the ranking.
type Options struct {
	MaxResults      int
	RandomCount     int
	ProfitThreshold float64
	RollingWindow   int
	MinTransactions int
	Blacklist       map[string]struct{}
	UseBlacklist    bool
}

// Recommendation is one row of recommendation output.
type Recommendation struct {
	Name             string  `json:"name"`
	Score            float64 `json:"score"`
	RollingAvgProfit float64 `json:"rolling_avg_profit"`
	FlipCount        int     `json:"flip_count"`
}

// Result holds the ranked recommendations and the random extras.
type Result struct {
	Recommended []Recommendation `json:"recommended"`
	Random      []Recommendation `json:"random"`
}

// InspectorFormat joins the recommended item names with semicolons.
func (r Result) InspectorFormat() string {
	names := make([]string, len(r.Recommended))
	for i, rec := range r.Recommended {
		names[i] = rec.Name
	}
	return strings.Join(names, ";")
}

// Recommend ranks the population by recommendation score and applies the
// presentation filters.
//
// Behavior:
//   - Fails with ErrInsufficientData when the log has fewer than
//     opts.MinTransactions flips.
//   - Skips items whose rolling average profit is below the threshold,
//     blacklisted items (when enabled) and items with fewer than 2 flips.
//   - Stops after opts.MaxResults items.
//   - When the list is full, draws up to opts.RandomCount distinct extras
//     from the items ranked below the cut-off.
func Recommend(pop *stats.Population, scorer scoring.Scorer, opts Options, rng *rand.Rand) (Result, error) {
	var res Result
	if opts.MaxResults < 1 {
		return res, fmt.Errorf("a recommendation count of at least 1 is required, got %d", opts.MaxResults)
	}
	if pop.Transactions < opts.MinTransactions {
		return res, ErrInsufficientData
	}

	ranked := Rank(pop, MetricRecommendation, scorer)

	skip := func(s *stats.AggregateStat) bool {
		if s.FlipCount() < 2 {
			return true
		}
		if s.RollingAvgProfit(opts.RollingWindow) < opts.ProfitThreshold {
			return true
		}
		if opts.UseBlacklist {
			if _, ok := opts.Blacklist[s.Name]; ok {
				return true
			}
		}
		return false
	}

	cutoff := len(ranked)
	for i, r := range ranked {
		if len(res.Recommended) >= opts.MaxResults {
			cutoff = i
			break
		}
		if skip(r.Stat) {
			continue
		}
		res.Recommended = append(res.Recommended, toRecommendation(r, opts.RollingWindow))
	}

	if len(res.Recommended) < opts.MaxResults || opts.RandomCount <= 0 || rng == nil {
		return res, nil
	}

	rest := ranked[cutoff:]
	n := opts.RandomCount
	if n > len(rest) {
		n = len(rest)
	}
	for _, idx := range rng.Perm(len(rest))[:n] {
		res.Random = append(res.Random, toRecommendation(rest[idx], opts.RollingWindow))
	}

	return res, nil
}

func toRecommendation(r Ranked, window int) Recommendation {
	return Recommendation{
		Name:             r.Stat.Name,
		Score:            r.Score,
		RollingAvgProfit: r.Stat.RollingAvgProfit(window),
		FlipCount:        r.Stat.FlipCount(),
	}
}
