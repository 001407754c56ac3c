package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/guttosm/flippulse/internal/domain/models"
	"github.com/guttosm/flippulse/internal/margin"
	"github.com/guttosm/flippulse/internal/optimizer"
	"github.com/guttosm/flippulse/internal/ranking"
	"github.com/guttosm/flippulse/internal/scoring"
	"github.com/guttosm/flippulse/internal/stats"
	"github.com/guttosm/flippulse/internal/storage"
)

var (
	// ErrInsufficientData wraps the ranking and optimizer minimum-size errors.
	ErrInsufficientData = errors.New("insufficient flip data")
	// ErrItemNotFound means the log has no rows for the requested item.
	ErrItemNotFound = errors.New("item not found")
	// ErrFlipNotFound means no active flip has the requested id.
	ErrFlipNotFound = errors.New("active flip not found")
	// ErrInvalidFlip is returned for flips that fail validation.
	ErrInvalidFlip = errors.New("invalid flip")
)

// Settings are the defaults applied to every request.
type Settings struct {
	Recommend ranking.Options
	Strategy  scoring.Strategy
	Weights   scoring.Weights
	Optimizer optimizer.Config
}

// FlipService defines the operations on the flip log exposed to the HTTP
// API and the CLI. Write operations are serialized.
type FlipService interface {
	Stats(ctx context.Context, metric ranking.Metric, limit int) (*StatsReport, error)
	Recommend(ctx context.Context, req RecommendRequest) (*RecommendReport, error)
	Item(ctx context.Context, name string) (*ItemReport, error)
	SparseItems(ctx context.Context, maxFlips int) ([]ItemSummary, error)
	Active(ctx context.Context, account string) ([]ActiveFlip, error)
	Add(ctx context.Context, flip models.Flip) (*ActiveFlip, error)
	Sell(ctx context.Context, id int, price, qty int64) (*SaleReport, error)
	Cancel(ctx context.Context, id int) (*models.Flip, error)
	Update(ctx context.Context, id int, patch FlipPatch) (*models.Flip, error)
	Repair(ctx context.Context) (*RepairReport, error)
	Population(ctx context.Context) (*stats.Population, error)
	Optimizer(ctx context.Context, opts ...optimizer.Option) (*optimizer.Optimizer, error)
	Ping(ctx context.Context) error
}

type flipService struct {
	repo     storage.FlipRepository
	settings Settings
	newRand  func() *rand.Rand

	mu sync.Mutex
}

// ServiceOption customizes the flip service.
type ServiceOption func(*flipService)

// WithRand replaces the source of the random extras drawn by Recommend.
func WithRand(fn func() *rand.Rand) ServiceOption {
	return func(s *flipService) { s.newRand = fn }
}

// NewFlipService creates the service on top of a repository.
//
// Parameters:
//   - repo: flip log storage.
//   - settings: recommendation, scoring and optimizer defaults.
//
// Returns:
//   - FlipService ready for use by handlers and the CLI.
func NewFlipService(repo storage.FlipRepository, settings Settings, opts ...ServiceOption) FlipService {
	s := &flipService{
		repo:     repo,
		settings: settings,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load reads the log; a store that was never written is an empty log.
func (s *flipService) load(ctx context.Context) (*models.FlipLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log, err := s.repo.Load()
	if errors.Is(err, storage.ErrNotFound) {
		return &models.FlipLog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load flip log: %w", err)
	}
	return log, nil
}

func (s *flipService) save(log *models.FlipLog) error {
	if err := s.repo.Save(log); err != nil {
		return fmt.Errorf("save flip log: %w", err)
	}
	return nil
}

func (s *flipService) Population(ctx context.Context) (*stats.Population, error) {
	log, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Aggregate(log.Flips), nil
}

func (s *flipService) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.repo.Ping()
}

func (s *flipService) scorer(strategy scoring.Strategy) scoring.Scorer {
	if strategy == 0 {
		strategy = s.settings.Strategy
	}
	return scoring.New(strategy, s.settings.Weights)
}

// Stats ranks every traded item by metric. A positive limit keeps the
// top entries only.
func (s *flipService) Stats(ctx context.Context, metric ranking.Metric, limit int) (*StatsReport, error) {
	log, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	pop := stats.Aggregate(log.Flips)

	ranked := ranking.Rank(pop, metric, s.scorer(0))
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	report := &StatsReport{
		Metric:       metric,
		Totals:       log.Stats,
		Transactions: pop.Transactions,
		Items:        make([]ItemSummary, 0, len(ranked)),
	}
	for _, r := range ranked {
		sum := s.summarize(r.Stat)
		sum.Score = r.Score
		report.Items = append(report.Items, sum)
	}
	return report, nil
}

// Recommend applies the request overrides on top of the configured
// recommendation options.
func (s *flipService) Recommend(ctx context.Context, req RecommendRequest) (*RecommendReport, error) {
	log, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	opts := s.settings.Recommend
	if req.Count > 0 {
		opts.MaxResults = req.Count
	}
	if req.Threshold != nil {
		opts.ProfitThreshold = *req.Threshold
	}
	if req.UseBlacklist != nil {
		opts.UseBlacklist = *req.UseBlacklist
	}
	if req.RandomCount != nil {
		opts.RandomCount = *req.RandomCount
	}

	scorer := s.scorer(req.Strategy)
	res, err := ranking.Recommend(stats.Aggregate(log.Flips), scorer, opts, s.newRand())
	if errors.Is(err, ranking.ErrInsufficientData) {
		return nil, fmt.Errorf("%w: %d flips recorded, %d required", ErrInsufficientData, len(log.Flips), opts.MinTransactions)
	}
	if err != nil {
		return nil, err
	}

	return &RecommendReport{Strategy: scorer.Strategy(), Result: res}, nil
}

// Item reports the statistics and the rows of one item.
func (s *flipService) Item(ctx context.Context, name string) (*ItemReport, error) {
	log, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	report := &ItemReport{}
	var buys, solds []float64
	for i, f := range log.Flips {
		if f.Item != name {
			continue
		}
		report.Flips = append(report.Flips, IndexedFlip{Position: i, Flip: f})
		if f.Done && !f.Cancelled {
			buys = append(buys, float64(f.Buy))
			solds = append(solds, float64(f.SalePrice()))
		}
	}
	if len(report.Flips) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, name)
	}

	pop := stats.Aggregate(log.Flips)
	if st, ok := pop.Lookup(name); ok {
		report.Summary = s.summarize(st)
	} else {
		report.Summary = ItemSummary{Name: name}
	}
	report.Buy = priceRange(buys)
	report.Sold = priceRange(solds)
	return report, nil
}

func priceRange(prices []float64) PriceRange {
	if len(prices) == 0 {
		return PriceRange{}
	}
	return PriceRange{
		Min: floats.Min(prices),
		Max: floats.Max(prices),
		Avg: stat.Mean(prices, nil),
	}
}

// SparseItems lists traded items with at most maxFlips completed flips.
func (s *flipService) SparseItems(ctx context.Context, maxFlips int) ([]ItemSummary, error) {
	pop, err := s.Population(ctx)
	if err != nil {
		return nil, err
	}
	var out []ItemSummary
	for _, st := range pop.Stats() {
		if st.FlipCount() <= maxFlips {
			out = append(out, s.summarize(st))
		}
	}
	return out, nil
}

func (s *flipService) summarize(st *stats.AggregateStat) ItemSummary {
	return ItemSummary{
		Name:              st.Name,
		Flips:             st.FlipCount(),
		CancelledFlips:    st.CancelledFlipCount(),
		TotalProfit:       st.TotalProfit(),
		AvgProfit:         st.AvgProfit(),
		RollingAvgProfit:  st.RollingAvgProfit(s.settings.Recommend.RollingWindow),
		AvgROI:            st.AvgROI(),
		CancellationRatio: st.CancellationRatio(),
		LatestTradeIndex:  st.LatestTradeIndex(),
	}
}

// Active lists flips waiting to be sold. Ids number all active flips in
// log order and do not depend on the account filter.
func (s *flipService) Active(ctx context.Context, account string) ([]ActiveFlip, error) {
	log, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []ActiveFlip{}
	for _, a := range activeFlips(log.Flips) {
		if account == "" || a.Flip.Account == account {
			out = append(out, a)
		}
	}
	return out, nil
}

func activeFlips(flips []models.Flip) []ActiveFlip {
	var out []ActiveFlip
	for i, f := range flips {
		if f.Active() {
			out = append(out, ActiveFlip{ID: len(out), Position: i, Flip: f})
		}
	}
	return out
}

// locate maps an active id to a log position.
func locate(flips []models.Flip, id int) (int, error) {
	for _, a := range activeFlips(flips) {
		if a.ID == id {
			return a.Position, nil
		}
	}
	return 0, fmt.Errorf("%w: id %d", ErrFlipNotFound, id)
}

// Add records a new active flip.
func (s *flipService) Add(ctx context.Context, flip models.Flip) (*ActiveFlip, error) {
	flip.Item = strings.TrimSpace(flip.Item)
	switch {
	case flip.Item == "":
		return nil, fmt.Errorf("%w: item name is required", ErrInvalidFlip)
	case flip.Buy <= 0:
		return nil, fmt.Errorf("%w: buy price must be positive", ErrInvalidFlip)
	case flip.Limit <= 0:
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidFlip)
	case flip.Sell < 0:
		return nil, fmt.Errorf("%w: sell price must not be negative", ErrInvalidFlip)
	}
	if flip.Account == "" {
		flip.Account = models.DefaultAccount
	}
	flip.Sold, flip.Done, flip.Cancelled = 0, false, false

	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Append([]models.Flip{flip}); err != nil {
		return nil, fmt.Errorf("append flip: %w", err)
	}

	active := activeFlips(log.Flips)
	return &ActiveFlip{ID: len(active), Position: len(log.Flips), Flip: flip}, nil
}

// Sell completes an active flip.
//
// Behavior:
//   - price 0 sells at the offer price.
//   - qty 0 keeps the bought quantity, otherwise it replaces it.
//   - The stored totals are advanced by the flip's profit.
func (s *flipService) Sell(ctx context.Context, id int, price, qty int64) (*SaleReport, error) {
	if price < 0 || qty < 0 {
		return nil, fmt.Errorf("%w: price and quantity must not be negative", ErrInvalidFlip)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	pos, err := locate(log.Flips, id)
	if err != nil {
		return nil, err
	}

	f := &log.Flips[pos]
	if price == 0 {
		price = f.Sell
	}
	if qty > 0 {
		f.Limit = qty
	}
	f.Sold = price
	f.Done = true

	profit := margin.FlipProfit(*f)
	log.Stats.FlipsDone++
	log.Stats.Profit += profit

	if err := s.save(log); err != nil {
		return nil, err
	}
	return &SaleReport{
		Flip:   *f,
		Profit: profit,
		ROI:    margin.FlipROI(*f),
		Totals: log.Stats,
	}, nil
}

// Cancel marks an active flip as cancelled.
func (s *flipService) Cancel(ctx context.Context, id int) (*models.Flip, error) {
	return s.mutate(ctx, id, func(f *models.Flip) {
		f.Cancelled = true
	})
}

// Update changes the fields of an active flip that are set in patch.
func (s *flipService) Update(ctx context.Context, id int, patch FlipPatch) (*models.Flip, error) {
	if patch.Buy < 0 || patch.Sell < 0 || patch.Limit < 0 {
		return nil, fmt.Errorf("%w: prices and quantity must not be negative", ErrInvalidFlip)
	}
	return s.mutate(ctx, id, patch.apply)
}

func (s *flipService) mutate(ctx context.Context, id int, fn func(*models.Flip)) (*models.Flip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	pos, err := locate(log.Flips, id)
	if err != nil {
		return nil, err
	}
	fn(&log.Flips[pos])
	if err := s.save(log); err != nil {
		return nil, err
	}
	out := log.Flips[pos]
	return &out, nil
}

// Optimizer builds a weight search over the current log.
func (s *flipService) Optimizer(ctx context.Context, opts ...optimizer.Option) (*optimizer.Optimizer, error) {
	pop, err := s.Population(ctx)
	if err != nil {
		return nil, err
	}
	opt, err := optimizer.New(pop, s.settings.Optimizer, opts...)
	if errors.Is(err, optimizer.ErrInsufficientData) {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientData, err)
	}
	return opt, err
}
