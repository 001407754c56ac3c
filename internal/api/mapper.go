package api

import (
	"github.com/guttosm/flippulse/internal/domain/dto"
	"github.com/guttosm/flippulse/internal/ranking"
	"github.com/guttosm/flippulse/internal/service"
)

func toItemStats(s service.ItemSummary) dto.ItemStatsResponse {
	return dto.ItemStatsResponse{
		Name:              s.Name,
		Score:             s.Score,
		Flips:             s.Flips,
		CancelledFlips:    s.CancelledFlips,
		TotalProfit:       s.TotalProfit,
		AvgProfit:         s.AvgProfit,
		RollingAvgProfit:  s.RollingAvgProfit,
		AvgROI:            s.AvgROI,
		CancellationRatio: s.CancellationRatio,
		LatestTradeIndex:  s.LatestTradeIndex,
	}
}

func toStatsResponse(r *service.StatsReport) dto.StatsResponse {
	items := make([]dto.ItemStatsResponse, len(r.Items))
	for i, s := range r.Items {
		items[i] = toItemStats(s)
	}
	return dto.StatsResponse{
		Sort:         r.Metric.String(),
		Totals:       r.Totals,
		Transactions: r.Transactions,
		Items:        items,
	}
}

func toRecommendationResponse(r *service.RecommendReport) dto.RecommendationResponse {
	resp := dto.RecommendationResponse{
		Algorithm:   int(r.Strategy),
		Recommended: r.Result.Recommended,
		Random:      r.Result.Random,
		Inspector:   r.Result.InspectorFormat(),
	}
	if resp.Recommended == nil {
		resp.Recommended = []ranking.Recommendation{}
	}
	if resp.Random == nil {
		resp.Random = []ranking.Recommendation{}
	}
	return resp
}

func toPriceRange(p service.PriceRange) dto.PriceRangeResponse {
	return dto.PriceRangeResponse{Min: p.Min, Max: p.Max, Avg: p.Avg}
}

func toItemResponse(r *service.ItemReport) dto.ItemResponse {
	flips := make([]dto.IndexedFlipResponse, len(r.Flips))
	for i, f := range r.Flips {
		flips[i] = dto.IndexedFlipResponse{Position: f.Position, Flip: f.Flip}
	}
	return dto.ItemResponse{
		Stats: toItemStats(r.Summary),
		Buy:   toPriceRange(r.Buy),
		Sold:  toPriceRange(r.Sold),
		Flips: flips,
	}
}

func toActiveFlipResponse(a service.ActiveFlip) dto.ActiveFlipResponse {
	return dto.ActiveFlipResponse{ID: a.ID, Position: a.Position, Flip: a.Flip}
}
