package service

import (
	"github.com/guttosm/flippulse/internal/domain/models"
	"github.com/guttosm/flippulse/internal/ranking"
	"github.com/guttosm/flippulse/internal/scoring"
)

// ItemSummary is the per-item view of the aggregated statistics.
type ItemSummary struct {
	Name              string
	Score             float64
	Flips             int
	CancelledFlips    int
	TotalProfit       int64
	AvgProfit         float64
	RollingAvgProfit  float64
	AvgROI            float64
	CancellationRatio float64
	LatestTradeIndex  int
}

// StatsReport is a ranking of every traded item.
type StatsReport struct {
	Metric       ranking.Metric
	Totals       models.Totals
	Transactions int
	Items        []ItemSummary
}

// RecommendRequest overrides the configured recommendation options.
// Zero values and nil pointers keep the configured default.
type RecommendRequest struct {
	Count        int
	Threshold    *float64
	Strategy     scoring.Strategy
	UseBlacklist *bool
	RandomCount  *int
}

// RecommendReport carries the recommendations and the strategy that scored them.
type RecommendReport struct {
	Strategy scoring.Strategy
	Result   ranking.Result
}

// PriceRange summarizes the prices of completed flips.
type PriceRange struct {
	Min float64
	Max float64
	Avg float64
}

// IndexedFlip is a flip together with its log position.
type IndexedFlip struct {
	Position int
	Flip     models.Flip
}

// ItemReport is the detail view of one item.
type ItemReport struct {
	Summary ItemSummary
	Buy     PriceRange
	Sold    PriceRange
	Flips   []IndexedFlip
}

// ActiveFlip is a flip that is neither done nor cancelled. ID is its rank
// among active flips, Position its place in the log.
type ActiveFlip struct {
	ID       int
	Position int
	Flip     models.Flip
}

// SaleReport is returned when an active flip is sold.
type SaleReport struct {
	Flip   models.Flip
	Profit int64
	ROI    float64
	Totals models.Totals
}

// FlipPatch holds the fields to change on an active flip. Zero values are
// left untouched.
type FlipPatch struct {
	Item    string
	Buy     int64
	Sell    int64
	Limit   int64
	Account string
}

func (p FlipPatch) apply(f *models.Flip) {
	if p.Item != "" {
		f.Item = p.Item
	}
	if p.Buy != 0 {
		f.Buy = p.Buy
	}
	if p.Sell != 0 {
		f.Sell = p.Sell
	}
	if p.Limit != 0 {
		f.Limit = p.Limit
	}
	if p.Account != "" {
		f.Account = p.Account
	}
}

// RepairIssue describes one flip changed by Repair.
type RepairIssue struct {
	Position int
	Item     string
	Reason   string
}

// RepairReport lists the repaired flips and the totals around the repair.
type RepairReport struct {
	Issues []RepairIssue
	Before models.Totals
	After  models.Totals
}

// Changed reports whether Repair wrote anything.
func (r *RepairReport) Changed() bool {
	return len(r.Issues) > 0 || r.Before != r.After
}
