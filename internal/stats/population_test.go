package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/flippulse/internal/domain/models"
)

func done(item string, buy, sold, limit int64) models.Flip {
	return models.Flip{Item: item, Buy: buy, Sell: sold, Sold: sold, Limit: limit, Done: true, Account: models.DefaultAccount}
}

func TestAggregate_SkipsInProgressAndCountsCancelled(t *testing.T) {
	flips := []models.Flip{
		{Item: "Test item", Buy: 1000, Sell: 1500, Sold: 1400, Limit: 5000, Done: true},
		{Item: "Another test item", Buy: 500, Sell: 1000, Sold: 900, Limit: 2000},
		{Item: "Test item", Buy: 500, Sell: 1000, Sold: 900, Limit: 2000, Done: true},
		{Item: "Cancelled item", Buy: 10, Sell: 20, Limit: 10, Cancelled: true},
		{Item: "Test item", Buy: 10, Sell: 20, Limit: 10, Cancelled: true},
	}

	pop := Aggregate(flips)
	items := pop.Stats()
	require.Len(t, items, 1)
	assert.Equal(t, "Test item", items[0].Name)
	assert.Equal(t, 2, items[0].FlipCount())
	assert.Equal(t, 1, items[0].CancelledFlipCount())
	assert.Equal(t, 2, items[0].LatestTradeIndex())
	assert.Equal(t, 2, pop.TotalFlips)
	assert.Equal(t, 5, pop.Transactions)

	_, ok := pop.Lookup("Another test item")
	assert.False(t, ok, "in-progress flips must not create items")

	cancelled, ok := pop.Lookup("Cancelled item")
	require.True(t, ok)
	assert.Equal(t, 0, cancelled.FlipCount())
	assert.Equal(t, 1.0, cancelled.CancellationRatio())
}

func TestAggregate_ProfitAndROI(t *testing.T) {
	pop := Aggregate([]models.Flip{
		done("a", 20, 30, 1),
		done("b", 10, 20, 1),
		done("c", 20, 10, 1),
		done("d", 0, 10, 1),
	})

	roi := map[string]float64{"a": 50, "b": 100, "c": -50, "d": 100}
	for name, want := range roi {
		s, ok := pop.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, want, s.AvgROI(), name)
	}

	b, _ := pop.Lookup("b")
	assert.Equal(t, float64(10), b.AvgProfit())
}

func TestAggregate_Invariants(t *testing.T) {
	flips := []models.Flip{
		done("x", 100, 150, 10),
		done("y", 100, 90, 10),
		{Item: "x", Buy: 100, Sell: 150, Limit: 10, Cancelled: true},
		done("x", 100, 80, 10),
		done("y", 100, 200, 10),
		{Item: "y", Buy: 100, Sell: 150, Limit: 10},
		done("x", 100, 120, 10),
	}
	pop := Aggregate(flips)

	prevLatest := map[string]int{}
	for i := range flips {
		partial := Aggregate(flips[:i+1])
		for _, s := range partial.Stats() {
			assert.GreaterOrEqual(t, s.LatestTradeIndex(), prevLatest[s.Name])
			prevLatest[s.Name] = s.LatestTradeIndex()
		}
	}

	for _, s := range pop.Stats() {
		assert.LessOrEqual(t, s.ProfitableFlipCount(), s.FlipCount())
		assert.GreaterOrEqual(t, s.CancellationRatio(), 0.0)
		assert.LessOrEqual(t, s.CancellationRatio(), 1.0)
	}
	assert.Equal(t, 6, pop.TotalFlips)
}

func TestComputeRanges_NormalizeRoundTrip(t *testing.T) {
	pop := Aggregate([]models.Flip{
		done("cheap", 10, 20, 100),
		done("mid", 100, 150, 50),
		done("pricey", 1000, 1500, 10),
	})

	var minItem, maxItem *AggregateStat
	for _, s := range pop.Stats() {
		if minItem == nil || s.AvgProfit() < minItem.AvgProfit() {
			minItem = s
		}
		if maxItem == nil || s.AvgProfit() > maxItem.AvgProfit() {
			maxItem = s
		}
	}
	require.Less(t, pop.Ranges.Profit.Min, pop.Ranges.Profit.Max)
	assert.Equal(t, 0.0, pop.Ranges.Profit.Normalize(minItem.AvgProfit()))
	assert.Equal(t, 1.0, pop.Ranges.Profit.Normalize(maxItem.AvgProfit()))

	assert.Equal(t, 10.0, pop.Ranges.BuyLimit.Min)
	assert.Equal(t, 100.0, pop.Ranges.BuyLimit.Max)
	assert.Equal(t, 0.0, pop.Ranges.BuyLimit.Normalize(10))
	assert.Equal(t, 1.0, pop.Ranges.BuyLimit.Normalize(100))
}

func TestRange_Degenerate(t *testing.T) {
	r := Range{Min: 5, Max: 5}
	assert.Equal(t, 0.0, r.Normalize(5))

	pop := Aggregate([]models.Flip{done("only", 10, 20, 10)})
	only, _ := pop.Lookup("only")
	assert.Equal(t, 0.0, pop.Ranges.Profit.Normalize(only.AvgProfit()))

	empty := ComputeRanges(nil)
	assert.Equal(t, Ranges{}, empty)
}

func TestPopulation_Filter(t *testing.T) {
	var flips []models.Flip
	for i := 0; i < 5; i++ {
		flips = append(flips, done("busy", 10, 20, 10))
	}
	flips = append(flips, done("rare", 10, 40, 10))

	pop := Aggregate(flips)
	filtered := pop.Filter(4)
	require.Equal(t, 1, filtered.Len())
	assert.Equal(t, "busy", filtered.Stats()[0].Name)
	assert.Equal(t, pop.TotalFlips, filtered.TotalFlips)
	assert.Equal(t, 0.0, filtered.Ranges.Profit.Normalize(100))
}

func TestAggregate_DoneWithoutSoldPriceIsALoss(t *testing.T) {
	pop := Aggregate([]models.Flip{
		{Item: "Unsold item", Buy: 100, Sell: 200, Sold: 0, Limit: 10, Done: true},
	})

	s, ok := pop.Lookup("Unsold item")
	require.True(t, ok)
	assert.Equal(t, int64(-1000), s.TotalProfit())
	assert.InDelta(t, -1000.0, s.AvgProfit(), 1e-9)
	assert.InDelta(t, -100.0, s.AvgROI(), 1e-9)
}
