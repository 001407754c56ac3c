package scoring

import (
	"fmt"
	"math"

	"github.com/guttosm/flippulse/internal/stats"
)

// Strategy selects the recommendation algorithm.
type Strategy int

const (
	V1 Strategy = 1
	V2 Strategy = 2

	DefaultStrategy = V2
)

// ParseStrategy maps the numeric algorithm version used in configuration and
// on the command line to a Strategy.
func ParseStrategy(version int) (Strategy, error) {
	switch Strategy(version) {
	case V1, V2:
		return Strategy(version), nil
	default:
		return DefaultStrategy, fmt.Errorf("unknown recommendation algorithm version %d", version)
	}
}

func (s Strategy) String() string {
	return fmt.Sprintf("v%d", int(s))
}

// Scorer turns the statistics of one item into a ranking score.
// Implementations are pure; the population supplies normalization ranges
// and the global trade index.
type Scorer interface {
	Score(s *stats.AggregateStat, pop *stats.Population) float64
	Strategy() Strategy
}

// New returns the scorer for a strategy. The weights are only used by v2.
func New(strategy Strategy, weights Weights) Scorer {
	if strategy == V1 {
		return V1Scorer{}
	}
	return V2Scorer{Weights: weights}
}

// Limes approaches target as value grows without ever reaching it.
// decay sets where diminishing returns start and slope how fast the value
// rises; values below 0.001 return -300.
func Limes(target, decay, slope, value float64) float64 {
	if value < 0.001 {
		return -300
	}
	return target - decay/value*slope
}

const (
	v1AgePenalty     = 0.005
	v1AgeExponent    = 0.9
	v1MinDebuff      = 0.001
	v1MaxDebuff      = 1.0
	v1ProfitExponent = 1.5
	v1Divisor        = 10000.0

	v2FlipCountTarget = 15.0
	v2MinAgePenalty   = 0.90
	v2MaxAgePenalty   = 1.0
)

// V1Scorer is the closed-form heuristic built around the rolling profit.
type V1Scorer struct{}

func (V1Scorer) Strategy() Strategy { return V1 }

// Score computes
//
//	round(rolling^1.5 * ageDebuff * roiModifier * countModifier / 10000)
//
// where rolling is the rolling average profit over the default window. The
// power keeps the sign of a negative rolling profit.
func (V1Scorer) Score(s *stats.AggregateStat, pop *stats.Population) float64 {
	if s.FlipCount() == 0 {
		return 0
	}

	gap := float64(pop.TotalFlips - s.LatestTradeIndex())
	if gap < 0 {
		gap = 0
	}
	debuff := clamp(1.0-v1AgePenalty*math.Pow(gap, v1AgeExponent), v1MinDebuff, v1MaxDebuff)

	roiModifier := Limes(2, 1.5, 1, s.AvgROI())
	countModifier := Limes(2, 1, 3, float64(s.FlipCount()))

	rolling := s.RollingAvgProfit(stats.DefaultRollingWindow)
	profit := math.Copysign(math.Pow(math.Abs(rolling), v1ProfitExponent), rolling)

	return math.Round(profit * debuff * roiModifier * countModifier / v1Divisor)
}

// V2Scorer is a weighted linear combination of normalized signals.
type V2Scorer struct {
	Weights Weights
}

func (V2Scorer) Strategy() Strategy { return V2 }

// Signals returns the eight normalized inputs of the v2 model, ordered as
// the Signal constants.
func Signals(s *stats.AggregateStat, pop *stats.Population) [WeightCount]float64 {
	var sig [WeightCount]float64
	if s.FlipCount() == 0 {
		return sig
	}

	buyLimit := pop.Ranges.BuyLimit.Normalize(s.AvgBuyLimit())

	sig[SignalAvgProfit] = pop.Ranges.Profit.Normalize(s.AvgProfit())
	sig[SignalSuccessRate] = s.ProfitableRatio()
	sig[SignalConsistency] = 1.0 / (s.ProfitStdDev() + 1)
	sig[SignalCancellation] = 1.0 - s.CancellationRatio()
	sig[SignalFlipCount] = math.Min(1, float64(s.FlipCount())/v2FlipCountTarget)
	sig[SignalROI] = pop.Ranges.ROI.Normalize(s.AvgROI())
	sig[SignalBuyLimit] = buyLimit
	sig[SignalInverseBuyLimit] = 1.0 - buyLimit
	return sig
}

// AgePenalty scales scores of items whose last flip is old relative to the
// newest flip of any item.
func AgePenalty(s *stats.AggregateStat, pop *stats.Population) float64 {
	if pop.TotalFlips <= 0 {
		return v2MaxAgePenalty
	}
	return clamp(float64(s.LatestTradeIndex())/float64(pop.TotalFlips), v2MinAgePenalty, v2MaxAgePenalty)
}

// Score returns the composite score multiplied by the age penalty.
func (v V2Scorer) Score(s *stats.AggregateStat, pop *stats.Population) float64 {
	if s.FlipCount() == 0 {
		return 0
	}

	sig := Signals(s, pop)
	composite := 0.0
	for i, x := range sig {
		composite += x * v.Weights[i]
	}

	return composite * AgePenalty(s, pop)
}
