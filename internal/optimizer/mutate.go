package optimizer

import (
	"math/rand/v2"

	"github.com/guttosm/flippulse/internal/scoring"
)

// Mode controls how often the search abandons the current best vector.
type Mode int

const (
	// Explore jumps to a fully random vector often.
	Explore Mode = iota
	// Exploit mostly perturbs the current best locally.
	Exploit
)

func (m Mode) String() string {
	if m == Exploit {
		return "exploit"
	}
	return "explore"
}

// MutationConfig tunes a single mutation step.
type MutationConfig struct {
	// JumpChance is the probability of a full random vector, per mode.
	ExploreJumpChance float64
	ExploitJumpChance float64

	// Weights below SmallWeight get an additive nudge of up to Nudge
	// instead of a multiplicative factor.
	SmallWeight float64
	Nudge       float64

	// FactorMin and FactorMax bound the multiplicative factor.
	FactorMin float64
	FactorMax float64

	// MaxTouched caps how many weights one local step changes.
	MaxTouched int
}

// DefaultMutationConfig returns the tuning used by the CLI.
func DefaultMutationConfig() MutationConfig {
	return MutationConfig{
		ExploreJumpChance: 1.0 / 3,
		ExploitJumpChance: 1.0 / 7,
		SmallWeight:       0.02,
		Nudge:             0.05,
		FactorMin:         0.8,
		FactorMax:         1.2,
		MaxTouched:        3,
	}
}

// Mutate derives a candidate vector from w.
//
// Behavior:
//   - With the mode's jump chance every weight is redrawn from [0,1).
//   - Otherwise 1..MaxTouched distinct weights are perturbed: small
//     weights are nudged up additively, the rest scaled by a factor in
//     [FactorMin, FactorMax).
//   - The result is clamped and renormalized to sum to 1.
//
// Returns false, and w unchanged, when the candidate sums to zero.
func Mutate(w scoring.Weights, mode Mode, cfg MutationConfig, rng *rand.Rand) (scoring.Weights, bool) {
	next := w

	chance := cfg.ExploreJumpChance
	if mode == Exploit {
		chance = cfg.ExploitJumpChance
	}

	if rng.Float64() < chance {
		for i := range next {
			next[i] = rng.Float64()
		}
	} else {
		touched := 1
		if cfg.MaxTouched > 1 {
			touched += rng.IntN(min(cfg.MaxTouched, scoring.WeightCount))
		}
		for _, i := range rng.Perm(scoring.WeightCount)[:touched] {
			if next[i] < cfg.SmallWeight {
				next[i] += rng.Float64() * cfg.Nudge
				continue
			}
			next[i] *= cfg.FactorMin + rng.Float64()*(cfg.FactorMax-cfg.FactorMin)
		}
	}

	if !next.Normalize() {
		return w, false
	}
	return next, true
}
