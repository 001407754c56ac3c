package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/flippulse/config"
	"github.com/guttosm/flippulse/internal/api"
	"github.com/guttosm/flippulse/internal/logger"
	"github.com/guttosm/flippulse/internal/optimizer"
	"github.com/guttosm/flippulse/internal/ranking"
	"github.com/guttosm/flippulse/internal/scoring"
	"github.com/guttosm/flippulse/internal/service"
	"github.com/guttosm/flippulse/internal/storage"
)

// Container bundles the wired dependencies shared by the HTTP server and
// the CLI modes.
type Container struct {
	Repo    storage.FlipRepository
	Service service.FlipService
	Config  config.Config

	closers []func()
}

// Close releases every resource opened by Open.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Open wires storage and the flip service from configuration.
//
// Responsibilities:
//   - Selects the JSON file or the PostgreSQL repository.
//   - Runs repository initialization (default document or migrations).
//   - Loads the item blacklist.
//   - Builds service settings from configuration.
//
// Returns:
//   - *Container: ready to use; call Close on shutdown.
//   - error: any initialization error that occurred.
func Open(cfg config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		// indirection for unit testing
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		c.closers = append(c.closers, func() { _ = db.Close() })
		c.Repo = storage.NewPostgresRepository(db)
	case config.DriverJSON, "":
		c.Repo = storage.NewJSONRepository(cfg.Storage.DataFile)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if err := c.Repo.Init(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	blacklist, err := storage.LoadBlacklist(cfg.Storage.BlacklistFile)
	if err != nil {
		c.Close()
		return nil, err
	}

	settings, err := Settings(cfg, blacklist)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Service = service.NewFlipService(c.Repo, settings)

	logger.L().Debug().
		Str("driver", cfg.Storage.Driver).
		Int("blacklisted", len(blacklist)).
		Str("strategy", settings.Strategy.String()).
		Msg("flip service ready")

	return c, nil
}

// Settings maps configuration onto service settings. Weights from
// configuration are normalized; without any the built-in v2 weights apply.
func Settings(cfg config.Config, blacklist map[string]struct{}) (service.Settings, error) {
	strategy, err := scoring.ParseStrategy(cfg.Scorer.Strategy)
	if err != nil {
		return service.Settings{}, err
	}

	weights := scoring.DefaultWeights
	if len(cfg.Scorer.Weights) > 0 {
		if weights, err = scoring.WeightsFrom(cfg.Scorer.Weights); err != nil {
			return service.Settings{}, fmt.Errorf("SCORER_WEIGHTS: %w", err)
		}
	}

	opt := optimizer.DefaultConfig()
	o := cfg.Optimizer
	setIfPositive(&opt.MinTransactions, o.MinFlips)
	setIfPositive(&opt.MinObservations, o.MinObservations)
	setIfPositive(&opt.NoiseRepetitions, o.NoiseRepetitions)
	setIfPositive(&opt.Workers, o.Workers)
	setIfPositive(&opt.Simulation.Hours, o.Hours)
	setIfPositive(&opt.Simulation.Slots, o.Slots)
	setIfPositive(&opt.Simulation.TopK, o.TopK)
	setIfPositive(&opt.Simulation.Cooldown, o.Cooldown)
	setIfPositive(&opt.Simulation.Repetitions, o.Repetitions)
	setIfPositive(&opt.Simulation.SampleWindow, o.SampleWindow)
	if o.ExploitAfter > 0 {
		opt.ExploitAfter = o.ExploitAfter
	}
	if o.ExploreJumpChance > 0 {
		opt.Mutation.ExploreJumpChance = o.ExploreJumpChance
	}
	if o.ExploitJumpChance > 0 {
		opt.Mutation.ExploitJumpChance = o.ExploitJumpChance
	}

	return service.Settings{
		Recommend: ranking.Options{
			MaxResults:      cfg.Recommend.MaxResults,
			RandomCount:     cfg.Recommend.RandomCount,
			ProfitThreshold: cfg.Recommend.ProfitThreshold,
			RollingWindow:   cfg.Recommend.RollingWindow,
			MinTransactions: cfg.Recommend.MinFlips,
			Blacklist:       blacklist,
			UseBlacklist:    cfg.Recommend.UseBlacklist,
		},
		Strategy:  strategy,
		Weights:   weights,
		Optimizer: opt,
	}, nil
}

func setIfPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Opens the configured flip log store via Open().
//   - Creates the HTTP handler layer to handle requests.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	c, err := Open(config.AppConfig)
	if err != nil {
		return nil, nil, err
	}

	router := api.NewRouter(api.NewHandler(c.Service))
	api.NewHealthHandler(c.Service.Ping).Register(router)

	return router, c.Close, nil
}
