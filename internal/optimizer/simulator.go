package optimizer

import (
	"math/rand/v2"

	"github.com/guttosm/flippulse/internal/stats"
)

// SimulationConfig sizes one fitness evaluation.
type SimulationConfig struct {
	Hours        int
	Slots        int
	TopK         int
	Cooldown     int
	Repetitions  int
	SampleWindow int
}

// DefaultSimulationConfig models a day of trading with eight offer slots
// over the fifty best ranked items.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Hours:        24,
		Slots:        8,
		TopK:         50,
		Cooldown:     4,
		Repetitions:  5,
		SampleWindow: 15,
	}
}

// Simulator replays historical profits in the order a ranking suggests
// and reports how much a trader following it would have made.
type Simulator struct {
	cfg SimulationConfig
}

// NewSimulator returns a simulator for the given configuration.
// Non-positive fields fall back to the defaults.
func NewSimulator(cfg SimulationConfig) *Simulator {
	def := DefaultSimulationConfig()
	if cfg.Hours <= 0 {
		cfg.Hours = def.Hours
	}
	if cfg.Slots <= 0 {
		cfg.Slots = def.Slots
	}
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.Repetitions <= 0 {
		cfg.Repetitions = def.Repetitions
	}
	if cfg.SampleWindow <= 0 {
		cfg.SampleWindow = def.SampleWindow
	}
	return &Simulator{cfg: cfg}
}

// Config returns the effective configuration.
func (s *Simulator) Config() SimulationConfig {
	return s.cfg
}

// Fitness is the simulated profit averaged over all repetitions.
//
// Parameters:
//   - ranked: items in recommendation order, best first.
//   - rng: source for cancellation rolls. Each call consumes it, so
//     concurrent callers need their own.
//
// Returns:
//   - float64: average total profit of one simulated run.
func (s *Simulator) Fitness(ranked []*stats.AggregateStat, rng *rand.Rand) float64 {
	if len(ranked) == 0 {
		return 0
	}
	top := ranked
	if len(top) > s.cfg.TopK {
		top = top[:s.cfg.TopK]
	}

	var total float64
	for rep := 0; rep < s.cfg.Repetitions; rep++ {
		total += s.run(top, rng)
	}
	return total / float64(s.cfg.Repetitions)
}

// run is one independent repetition. Cooldowns and sample cursors live
// only for its duration.
func (s *Simulator) run(top []*stats.AggregateStat, rng *rand.Rand) float64 {
	cooldowns := make([]int, len(top))
	cursors := make([]int, len(top))
	for i, item := range top {
		cursors[i] = s.windowStart(item)
	}

	var profit float64
	for hour := 0; hour < s.cfg.Hours; hour++ {
		started := 0
		for i, item := range top {
			if started >= s.cfg.Slots {
				break
			}
			if cooldowns[i] > 0 {
				continue
			}
			if rng.Float64() < item.CancellationRatio() {
				continue
			}

			profits := item.Profits()
			if len(profits) == 0 {
				continue
			}
			if cursors[i] >= len(profits) {
				cursors[i] = s.windowStart(item)
			}
			profit += float64(profits[cursors[i]])
			cursors[i]++

			cooldowns[i] = s.cfg.Cooldown
			started++
		}

		for i := range cooldowns {
			if cooldowns[i] > 0 {
				cooldowns[i]--
			}
		}
	}
	return profit
}

// windowStart is the first observation of the recent sampling window.
func (s *Simulator) windowStart(item *stats.AggregateStat) int {
	n := item.FlipCount()
	if n >= s.cfg.SampleWindow {
		return n - s.cfg.SampleWindow
	}
	return 0
}
