package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/guttosm/flippulse/internal/logger"
	"github.com/guttosm/flippulse/internal/ranking"
	"github.com/guttosm/flippulse/internal/scoring"
	"github.com/guttosm/flippulse/internal/stats"
)

// ErrInsufficientData is returned when the log is too small to tune on.
var ErrInsufficientData = errors.New("not enough flips to optimize")

// Config drives a weight search.
type Config struct {
	// MinTransactions is the minimum flip log length.
	MinTransactions int
	// MinObservations drops items with fewer completed flips.
	MinObservations int
	// NoiseRepetitions is how many fitness runs calibrate the margin.
	NoiseRepetitions int
	// Workers bounds the calibration goroutines. 0 uses GOMAXPROCS.
	Workers int
	// ExploitAfter switches to exploit mode after this long without
	// an accepted improvement.
	ExploitAfter time.Duration
	// MaxIterations stops the search. 0 runs until the context ends.
	MaxIterations int
	// Seed makes a run reproducible. 0 seeds from the runtime.
	Seed uint64

	Simulation SimulationConfig
	Mutation   MutationConfig
}

// DefaultConfig returns the settings used by the CLI.
func DefaultConfig() Config {
	return Config{
		MinTransactions:  200,
		MinObservations:  10,
		NoiseRepetitions: 1000,
		ExploitAfter:     15 * time.Minute,
		Simulation:       DefaultSimulationConfig(),
		Mutation:         DefaultMutationConfig(),
	}
}

// Improvement is emitted for every accepted weight vector.
type Improvement struct {
	Iteration int             `json:"iteration"`
	Fitness   float64         `json:"fitness"`
	Weights   scoring.Weights `json:"weights"`
	Mode      Mode            `json:"-"`
	Elapsed   time.Duration   `json:"elapsed"`
}

// Optimizer hill-climbs the v2 weight vector against the trading simulator.
// It owns its weights for the whole run; nothing outside sees them until
// an improvement is reported.
type Optimizer struct {
	cfg Config
	pop *stats.Population
	sim *Simulator
	rng *rand.Rand
	now func() time.Time
	log zerolog.Logger
}

// Option customizes an Optimizer.
type Option func(*Optimizer)

// WithClock replaces time.Now, which drives the explore/exploit switch.
func WithClock(now func() time.Time) Option {
	return func(o *Optimizer) { o.now = now }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Optimizer) { o.log = l }
}

// New prepares a search over pop.
//
// Returns ErrInsufficientData when the log is shorter than
// cfg.MinTransactions or no item has cfg.MinObservations flips.
func New(pop *stats.Population, cfg Config, opts ...Option) (*Optimizer, error) {
	if pop.Transactions < cfg.MinTransactions {
		return nil, fmt.Errorf("%w: %d flips, need %d", ErrInsufficientData, pop.Transactions, cfg.MinTransactions)
	}
	filtered := pop.Filter(cfg.MinObservations)
	if filtered.Len() == 0 {
		return nil, fmt.Errorf("%w: no item has %d completed flips", ErrInsufficientData, cfg.MinObservations)
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	o := &Optimizer{
		cfg: cfg,
		pop: filtered,
		sim: NewSimulator(cfg.Simulation),
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
		log: logger.With("optimizer"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Population is the filtered population the search runs on.
func (o *Optimizer) Population() *stats.Population {
	return o.pop
}

// Fitness ranks the population under w and simulates trading the result.
func (o *Optimizer) Fitness(w scoring.Weights, rng *rand.Rand) float64 {
	return o.sim.Fitness(o.rank(w), rng)
}

func (o *Optimizer) rank(w scoring.Weights) []*stats.AggregateStat {
	ranked := ranking.Rank(o.pop, ranking.MetricRecommendation, scoring.V2Scorer{Weights: w})
	return ranking.Stats(ranked)
}

// NoiseMargin measures how far the fitness of a fixed vector spreads
// across repeated simulations (max minus min). Runs are spread over
// cfg.Workers goroutines, each with its own random source.
func (o *Optimizer) NoiseMargin(ctx context.Context, w scoring.Weights) (float64, error) {
	n := o.cfg.NoiseRepetitions
	if n < 2 {
		return 0, nil
	}

	ranked := o.rank(w)
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = o.rng.Uint64()
	}
	results := make([]float64, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seeds[i], uint64(i)))
			results[i] = o.sim.Fitness(ranked, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("calibrating noise margin: %w", err)
	}

	return floats.Max(results) - floats.Min(results), nil
}

// Run searches for better weights until ctx ends or cfg.MaxIterations is
// reached, and returns the best vector found.
//
// Behavior:
//   - Starts from uniform weights and calibrates the noise margin.
//   - Each iteration mutates the best vector and keeps the candidate only
//     if it beats the best fitness by more than the margin.
//   - Runs in exploit mode while no candidate was accepted for
//     cfg.ExploitAfter, in explore mode otherwise.
//   - onImprove, when set, is called synchronously for every acceptance.
//
// When ctx ends the best vector so far is returned with ctx.Err().
func (o *Optimizer) Run(ctx context.Context, onImprove func(Improvement)) (scoring.Weights, error) {
	start := o.now()
	best := scoring.UniformWeights()

	margin, err := o.NoiseMargin(ctx, best)
	if err != nil {
		return best, err
	}
	bestFitness := o.Fitness(best, o.rng)

	o.log.Info().
		Int("items", o.pop.Len()).
		Float64("fitness", bestFitness).
		Float64("noise_margin", margin).
		Msg("optimizer started")

	mode := Explore
	lastImprovement := start

	for iter := 1; o.cfg.MaxIterations == 0 || iter <= o.cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			o.log.Info().Int("iteration", iter).Float64("fitness", bestFitness).Msg("optimizer stopped")
			return best, err
		}

		if next := o.modeFor(o.now().Sub(lastImprovement)); next != mode {
			mode = next
			o.log.Debug().Int("iteration", iter).Str("mode", mode.String()).Msg("search mode changed")
		}

		candidate, ok := Mutate(best, mode, o.cfg.Mutation, o.rng)
		if !ok {
			continue
		}

		fitness := o.Fitness(candidate, o.rng)
		if fitness <= bestFitness+margin {
			continue
		}

		best, bestFitness = candidate, fitness
		lastImprovement = o.now()
		imp := Improvement{
			Iteration: iter,
			Fitness:   fitness,
			Weights:   best,
			Mode:      mode,
			Elapsed:   lastImprovement.Sub(start),
		}

		o.log.Info().
			Int("iteration", imp.Iteration).
			Float64("fitness", imp.Fitness).
			Str("mode", imp.Mode.String()).
			Str("weights", imp.Weights.String()).
			Msg("weights improved")
		if onImprove != nil {
			onImprove(imp)
		}
	}

	return best, nil
}

// modeFor picks the search mode for the time since the last acceptance.
func (o *Optimizer) modeFor(idle time.Duration) Mode {
	if idle >= o.cfg.ExploitAfter {
		return Exploit
	}
	return Explore
}
