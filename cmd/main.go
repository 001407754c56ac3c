package main

//
//  @title           flippulse API
//  @version         1.0
//  @description     Flip log statistics, recommendations and flip tracking.
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/flippulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        stats
//  @tag.description Per-item statistics
//
//  @tag.name        recommendations
//  @tag.description Ranked items to flip next
//
//  @tag.name        items
//  @tag.description Item detail and flip history
//
//  @tag.name        flips
//  @tag.description Recording and closing flips
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/flippulse/config"
	_ "github.com/guttosm/flippulse/docs" // swagger docs
	"github.com/guttosm/flippulse/internal/app"
	"github.com/guttosm/flippulse/internal/domain/models"
	"github.com/guttosm/flippulse/internal/logger"
	"github.com/guttosm/flippulse/internal/ranking"
	"github.com/guttosm/flippulse/internal/scoring"
	"github.com/guttosm/flippulse/internal/service"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown terminates the HTTP server and releases resources
// once ctx is done (SIGINT or SIGTERM in main).
//
// Parameters:
//   - ctx (context.Context): Cancelled when the process should stop.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	<-ctx.Done()
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Error().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// options are the parsed command line flags.
type options struct {
	mode     string
	port     string
	dir      string
	parallel int
	out      string

	sort      string
	limit     int
	count     int
	threshold *float64
	algorithm int
	random    *int
	blacklist *bool

	item     string
	maxFlips int
	account  string

	id    int
	buy   int64
	sell  int64
	price int64
	qty   int64

	instaBuy  int64
	instaSell int64

	duration time.Duration
}

// parseFlags reads args into options. Flags that override configured
// recommendation defaults are only applied when given explicitly.
func parseFlags(args []string, cfg config.Config) (options, error) {
	var o options
	fs := flag.NewFlagSet("flippulse", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&o.mode, "mode", "tips", "Mode: api, tips, stats, item, sparse, list, add, sell, cancel, update, repair, calc, import, export, optimize")
	fs.StringVar(&o.port, "port", cfg.Server.Port, "Port for API mode")
	fs.StringVar(&o.dir, "dir", "./data/input", "Directory with .csv exports (import)")
	fs.IntVar(&o.parallel, "parallel", 0, "Files parsed concurrently on import (0=auto, max 8)")
	fs.StringVar(&o.out, "out", "", "Export destination (stdout when empty)")

	fs.StringVar(&o.sort, "sort", "profit", "Stats ordering: profit, roi or recommendation (alias tips)")
	fs.IntVar(&o.limit, "limit", 0, "Limit stats rows (0=all)")
	fs.IntVar(&o.count, "count", 0, "Number of recommendations (0=configured)")
	threshold := fs.Float64("threshold", 0, "Minimum rolling average profit")
	fs.IntVar(&o.algorithm, "algorithm", 0, "Recommendation algorithm: 1 or 2 (0=configured)")
	random := fs.Int("random", 0, "Random extra picks")
	blacklist := fs.Bool("blacklist", true, "Skip blacklisted items")

	fs.StringVar(&o.item, "i", "", "Item name (item, add, update)")
	fs.IntVar(&o.maxFlips, "c", 0, "List items with at most this many flips (sparse)")
	fs.StringVar(&o.account, "account", "", "Account filter or account of a new flip")

	fs.IntVar(&o.id, "id", -1, "Active flip id (sell, cancel, update)")
	fs.Int64Var(&o.buy, "buy", 0, "Buy price per unit")
	fs.Int64Var(&o.sell, "sell", 0, "Offer price per unit")
	fs.Int64Var(&o.price, "price", 0, "Realized sale price (0=offer price)")
	fs.Int64Var(&o.qty, "qty", 0, "Quantity")

	fs.Int64Var(&o.instaBuy, "insta-buy", 0, "Instant buy price (calc)")
	fs.Int64Var(&o.instaSell, "insta-sell", 0, "Instant sell price (calc)")

	fs.DurationVar(&o.duration, "duration", 0, "Stop optimizing after this long (0=until interrupted)")

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			o.threshold = threshold
		case "random":
			o.random = random
		case "blacklist":
			o.blacklist = blacklist
		}
	})
	return o, nil
}

// run executes one non-server mode against an opened container.
func run(ctx context.Context, c *app.Container, o options, out io.Writer) error {
	cmd := &cli{svc: c.Service, repo: c.Repo, out: out}

	switch o.mode {
	case "tips":
		req := service.RecommendRequest{
			Count:        o.count,
			Threshold:    o.threshold,
			UseBlacklist: o.blacklist,
			RandomCount:  o.random,
		}
		if o.algorithm != 0 {
			s, err := scoring.ParseStrategy(o.algorithm)
			if err != nil {
				return err
			}
			req.Strategy = s
		}
		return cmd.tips(ctx, req)
	case "stats":
		metric, err := ranking.ParseMetric(o.sort)
		if err != nil {
			return err
		}
		return cmd.stats(ctx, metric, o.limit)
	case "item":
		if o.item == "" {
			return errors.New("item mode needs -i <name>")
		}
		return cmd.item(ctx, o.item)
	case "sparse":
		return cmd.sparse(ctx, o.maxFlips)
	case "list":
		return cmd.active(ctx, o.account)
	case "add":
		return cmd.add(ctx, models.Flip{
			Item:    o.item,
			Buy:     o.buy,
			Sell:    o.sell,
			Limit:   o.qty,
			Account: o.account,
		})
	case "sell":
		return cmd.sell(ctx, o.id, o.price, o.qty)
	case "cancel":
		return cmd.cancel(ctx, o.id)
	case "update":
		return cmd.update(ctx, o.id, service.FlipPatch{
			Item:    o.item,
			Buy:     o.buy,
			Sell:    o.sell,
			Limit:   o.qty,
			Account: o.account,
		})
	case "repair":
		return cmd.repair(ctx)
	case "import":
		return cmd.importDir(ctx, o.dir, o.parallel)
	case "export":
		return cmd.export(ctx, o.out)
	case "optimize":
		if o.duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, o.duration)
			defer cancel()
		}
		return cmd.optimize(ctx, c.Config.Optimizer)
	default:
		return fmt.Errorf("unknown mode %q", o.mode)
	}
}

// main is the entry point of the flippulse application.
//
// Modes (selected via --mode flag):
//   - api:      Starts the REST API.
//   - tips:     Prints recommendations (default).
//   - stats:    Ranks every item by profit or ROI.
//   - item:     Shows one item and its flips (-i).
//   - sparse:   Lists rarely traded items (-c).
//   - list:     Lists active flips, optionally for one account.
//   - add, sell, cancel, update: Flip lifecycle.
//   - repair:   Fixes inconsistent flips and recomputes totals.
//   - calc:     Estimates a flip from instant buy/sell prices.
//   - import:   Appends the .csv exports of a directory.
//   - export:   Writes the log as CSV.
//   - optimize: Searches v2 weights until interrupted.
func main() {
	// Load configuration from environment or .env file
	config.LoadConfig()

	logger.Init()

	o, err := parseFlags(os.Args[1:], config.AppConfig)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("invalid flags")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch o.mode {
	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, o.port)
		gracefulShutdown(ctx, server, cleanup)

	case "calc":
		calc(os.Stdout, o.instaBuy, o.instaSell, o.qty)

	default:
		c, err := app.Open(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}
		err = run(ctx, c, o, os.Stdout)
		c.Close()
		if err != nil {
			logger.L().Fatal().Err(err).Str("mode", o.mode).Msg("command failed")
		}
	}
}
