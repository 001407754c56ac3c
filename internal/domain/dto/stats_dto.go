package dto

import (
	"github.com/guttosm/flippulse/internal/domain/models"
	"github.com/guttosm/flippulse/internal/ranking"
)

// ItemStatsResponse holds the aggregated statistics of one item.
type ItemStatsResponse struct {
	Name              string  `json:"name" example:"Yew logs"`
	Score             float64 `json:"score" example:"1520.5"`
	Flips             int     `json:"flips" example:"42"`
	CancelledFlips    int     `json:"cancelled_flips" example:"3"`
	TotalProfit       int64   `json:"total_profit" example:"63861"`
	AvgProfit         float64 `json:"avg_profit" example:"1520.5"`
	RollingAvgProfit  float64 `json:"rolling_avg_profit" example:"1800"`
	AvgROI            float64 `json:"avg_roi" example:"3.2"`
	CancellationRatio float64 `json:"cancellation_ratio" example:"0.0667"`
	LatestTradeIndex  int     `json:"latest_trade_index" example:"1410"`
}

// StatsResponse is returned by GET /api/v1/stats.
type StatsResponse struct {
	Sort         string              `json:"sort" example:"profit"`
	Totals       models.Totals       `json:"totals"`
	Transactions int                 `json:"transactions" example:"1413"`
	Items        []ItemStatsResponse `json:"items"`
}

// RecommendationResponse is returned by GET /api/v1/recommendations.
type RecommendationResponse struct {
	Algorithm   int                      `json:"algorithm" example:"2"`
	Recommended []ranking.Recommendation `json:"recommended"`
	Random      []ranking.Recommendation `json:"random"`
	Inspector   string                   `json:"inspector" example:"Yew logs;Magic logs"`
}

// PriceRangeResponse summarizes the prices of completed flips.
type PriceRangeResponse struct {
	Min float64 `json:"min" example:"270"`
	Max float64 `json:"max" example:"281"`
	Avg float64 `json:"avg" example:"276.4"`
}

// IndexedFlipResponse is a flip with its position in the log.
type IndexedFlipResponse struct {
	Position int         `json:"position" example:"17"`
	Flip     models.Flip `json:"flip"`
}

// ItemResponse is returned by GET /api/v1/items/{name}.
type ItemResponse struct {
	Stats ItemStatsResponse     `json:"stats"`
	Buy   PriceRangeResponse    `json:"buy"`
	Sold  PriceRangeResponse    `json:"sold"`
	Flips []IndexedFlipResponse `json:"flips"`
}
