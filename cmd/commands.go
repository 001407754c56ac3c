package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guttosm/flippulse/config"
	"github.com/guttosm/flippulse/internal/domain/models"
	"github.com/guttosm/flippulse/internal/format"
	"github.com/guttosm/flippulse/internal/ingestion"
	"github.com/guttosm/flippulse/internal/logger"
	"github.com/guttosm/flippulse/internal/margin"
	"github.com/guttosm/flippulse/internal/optimizer"
	"github.com/guttosm/flippulse/internal/optimizer/report"
	"github.com/guttosm/flippulse/internal/ranking"
	"github.com/guttosm/flippulse/internal/service"
	"github.com/guttosm/flippulse/internal/storage"
)

// cli renders the terminal modes on top of the flip service.
type cli struct {
	svc  service.FlipService
	repo storage.FlipRepository
	out  io.Writer
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func coins(v float64) string {
	return format.BigNumber(int64(math.Round(v)))
}

// tips prints the recommendation table, the random extras and the
// GE-inspector line.
func (c *cli) tips(ctx context.Context, req service.RecommendRequest) error {
	rep, err := c.svc.Recommend(ctx, req)
	if errors.Is(err, service.ErrInsufficientData) {
		_, _ = fmt.Fprintf(c.out, "no recommendations yet: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	tw := newTable(c.out)
	_, _ = fmt.Fprintln(tw, "#\tITEM\tSCORE\tROLLING AVG\tFLIPS")
	for i, r := range rep.Result.Recommended {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", i+1, r.Name, format.Round(r.Score, 4), coins(r.RollingAvgProfit), r.FlipCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rep.Result.Random) > 0 {
		_, _ = fmt.Fprintln(c.out, "\nrandom picks:")
		for _, r := range rep.Result.Random {
			_, _ = fmt.Fprintf(c.out, "  %s (%s avg, %d flips)\n", r.Name, coins(r.RollingAvgProfit), r.FlipCount)
		}
	}
	_, _ = fmt.Fprintf(c.out, "\ninspector (%s): %s\n", rep.Strategy, rep.Result.InspectorFormat())
	return nil
}

func (c *cli) stats(ctx context.Context, metric ranking.Metric, limit int) error {
	rep, err := c.svc.Stats(ctx, metric, limit)
	if err != nil {
		return err
	}

	tw := newTable(c.out)
	_, _ = fmt.Fprintln(tw, "ITEM\tFLIPS\tPROFIT\tAVG PROFIT\tAVG ROI\tCANCELLED")
	for _, it := range rep.Items {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s%%\t%s\n",
			it.Name, it.Flips, format.BigNumber(it.TotalProfit), coins(it.AvgProfit),
			format.Round(it.AvgROI, 2), format.Percent(it.CancellationRatio))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "\nsorted by %s, %d transactions, %d flips done, total profit %s\n",
		rep.Metric, rep.Transactions, rep.Totals.FlipsDone, format.Coins(rep.Totals.Profit))
	return nil
}

// item prints the summary, price ranges and every row of one item.
func (c *cli) item(ctx context.Context, name string) error {
	rep, err := c.svc.Item(ctx, name)
	if errors.Is(err, service.ErrItemNotFound) {
		_, _ = fmt.Fprintf(c.out, "no flips for %q\n", name)
		return nil
	}
	if err != nil {
		return err
	}

	s := rep.Summary
	_, _ = fmt.Fprintf(c.out, "%s: %d flips, %d cancelled, profit %s, avg %s, avg roi %s%%\n",
		s.Name, s.Flips, s.CancelledFlips, format.Coins(s.TotalProfit), coins(s.AvgProfit), format.Round(s.AvgROI, 2))
	_, _ = fmt.Fprintf(c.out, "buy  min %s max %s avg %s\n", coins(rep.Buy.Min), coins(rep.Buy.Max), coins(rep.Buy.Avg))
	_, _ = fmt.Fprintf(c.out, "sold min %s max %s avg %s\n\n", coins(rep.Sold.Min), coins(rep.Sold.Max), coins(rep.Sold.Avg))

	tw := newTable(c.out)
	_, _ = fmt.Fprintln(tw, "POS\tBUY\tSELL\tSOLD\tLIMIT\tSTATE\tACCOUNT")
	for _, row := range rep.Flips {
		f := row.Flip
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%s\t%s\n", row.Position, f.Buy, f.Sell, f.Sold, f.Limit, state(f), f.Account)
	}
	return tw.Flush()
}

func state(f models.Flip) string {
	switch {
	case f.Cancelled:
		return "cancelled"
	case f.Done:
		return "done"
	default:
		return "active"
	}
}

// sparse lists items traded at most maxFlips times.
func (c *cli) sparse(ctx context.Context, maxFlips int) error {
	items, err := c.svc.SparseItems(ctx, maxFlips)
	if err != nil {
		return err
	}
	tw := newTable(c.out)
	_, _ = fmt.Fprintln(tw, "ITEM\tFLIPS\tPROFIT")
	for _, it := range items {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", it.Name, it.Flips, format.BigNumber(it.TotalProfit))
	}
	return tw.Flush()
}

func (c *cli) active(ctx context.Context, account string) error {
	flips, err := c.svc.Active(ctx, account)
	if err != nil {
		return err
	}
	if len(flips) == 0 {
		_, _ = fmt.Fprintln(c.out, "no active flips")
		return nil
	}
	tw := newTable(c.out)
	_, _ = fmt.Fprintln(tw, "ID\tITEM\tBUY\tSELL\tLIMIT\tPROFIT\tACCOUNT")
	for _, a := range flips {
		f := a.Flip
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\t%s\n",
			a.ID, f.Item, f.Buy, f.Sell, f.Limit, format.BigNumber(margin.FlipProfit(f)), f.Account)
	}
	return tw.Flush()
}

func (c *cli) add(ctx context.Context, f models.Flip) error {
	a, err := c.svc.Add(ctx, f)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "added flip %d: %s x%d, buy %d sell %d (expected profit %s)\n",
		a.ID, a.Flip.Item, a.Flip.Limit, a.Flip.Buy, a.Flip.Sell, format.Coins(margin.FlipProfit(a.Flip)))
	return nil
}

func (c *cli) sell(ctx context.Context, id int, price, qty int64) error {
	rep, err := c.svc.Sell(ctx, id, price, qty)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "sold %s x%d at %d: profit %s, roi %s%%\n",
		rep.Flip.Item, rep.Flip.Limit, rep.Flip.Sold, format.Coins(rep.Profit), format.Round(rep.ROI, 2))
	_, _ = fmt.Fprintf(c.out, "total profit %s over %d flips\n", format.Coins(rep.Totals.Profit), rep.Totals.FlipsDone)
	return nil
}

func (c *cli) cancel(ctx context.Context, id int) error {
	f, err := c.svc.Cancel(ctx, id)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "cancelled %s x%d\n", f.Item, f.Limit)
	return nil
}

func (c *cli) update(ctx context.Context, id int, patch service.FlipPatch) error {
	f, err := c.svc.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "updated flip %d: %s x%d, buy %d sell %d, account %s\n", id, f.Item, f.Limit, f.Buy, f.Sell, f.Account)
	return nil
}

func (c *cli) repair(ctx context.Context) error {
	rep, err := c.svc.Repair(ctx)
	if err != nil {
		return err
	}
	if !rep.Changed() {
		_, _ = fmt.Fprintln(c.out, "flip log is consistent")
		return nil
	}
	for _, is := range rep.Issues {
		_, _ = fmt.Fprintf(c.out, "flip %d (%s): %s\n", is.Position, is.Item, is.Reason)
	}
	_, _ = fmt.Fprintf(c.out, "profit %s -> %s, flips done %d -> %d\n",
		format.Coins(rep.Before.Profit), format.Coins(rep.After.Profit), rep.Before.FlipsDone, rep.After.FlipsDone)
	return nil
}

// calc prints a margin estimate from the instant buy and sell prices.
func calc(out io.Writer, instaBuy, instaSell, limit int64) {
	e := margin.Estimate(instaBuy, instaSell, limit)
	tw := newTable(out)
	_, _ = fmt.Fprintf(tw, "buy offer\t%s\n", format.Coins(e.BuyOffer))
	_, _ = fmt.Fprintf(tw, "sell offer\t%s\n", format.Coins(e.SellOffer))
	_, _ = fmt.Fprintf(tw, "margin\t%s\n", format.Coins(e.Margin))
	_, _ = fmt.Fprintf(tw, "roi\t%s%%\n", format.Decimal(e.ROI))
	_, _ = fmt.Fprintf(tw, "capital\t%s\n", format.BigNumber(e.RequiredCapital))
	_, _ = fmt.Fprintf(tw, "profit\t%s\n", format.Coins(e.Profit))
	_ = tw.Flush()
}

func (c *cli) importDir(ctx context.Context, dir string, parallel int) error {
	sum, err := ingestion.ProcessDirectory(ctx, dir, c.repo, parallel)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "imported %d flips from %d files\n", sum.Flips, sum.Files)
	return nil
}

// export writes the whole log as CSV to path, or to the cli output when
// path is empty.
func (c *cli) export(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log, err := c.repo.Load()
	if errors.Is(err, storage.ErrNotFound) {
		log, err = &models.FlipLog{}, nil
	}
	if err != nil {
		return err
	}
	if path == "" {
		return ingestion.WriteCSV(c.out, log.Flips)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := ingestion.WriteCSV(f, log.Flips); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "exported %d flips to %s\n", len(log.Flips), path)
	return nil
}

// optimize searches for better v2 weights until ctx ends. Every accepted
// vector is written to weightsFile so an interrupted run keeps its progress.
func (c *cli) optimize(ctx context.Context, cfg config.OptimizerConfig) error {
	opt, err := c.svc.Optimizer(ctx)
	if errors.Is(err, service.ErrInsufficientData) {
		_, _ = fmt.Fprintf(c.out, "cannot optimize: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	log := logger.With("optimize")
	_, _ = fmt.Fprintf(c.out, "optimizing over %d items, stop with ctrl+c\n", opt.Population().Len())

	var history []optimizer.Improvement
	best, err := opt.Run(ctx, func(imp optimizer.Improvement) {
		history = append(history, imp)
		_, _ = fmt.Fprintf(c.out, "[%s] iteration %d fitness %s: %s\n",
			imp.Mode, imp.Iteration, format.BigNumber(int64(imp.Fitness)), imp.Weights)
		if cfg.WeightsFile == "" {
			return
		}
		if err := config.SaveWeights(cfg.WeightsFile, imp.Weights[:]); err != nil {
			log.Error().Err(err).Str("file", cfg.WeightsFile).Msg("failed to save weights")
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	_, _ = fmt.Fprintf(c.out, "best weights (%d improvements): %s\n", len(history), best)
	if cfg.PlotFile != "" && len(history) > 0 {
		if err := report.SaveFitnessPlot(history, cfg.PlotFile); err != nil {
			return fmt.Errorf("fitness plot: %w", err)
		}
		_, _ = fmt.Fprintf(c.out, "fitness plot written to %s\n", cfg.PlotFile)
	}
	return nil
}
