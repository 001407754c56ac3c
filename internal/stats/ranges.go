package stats

// Range is the observed min/max of one metric across a population.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Normalize maps v into [0,1] relative to the range.
// A degenerate range (Max == Min) yields 0.
func (r Range) Normalize(v float64) float64 {
	if r.Max == r.Min {
		return 0
	}
	return (v - r.Min) / (r.Max - r.Min)
}

func (r *Range) include(v float64, first bool) {
	if first || v < r.Min {
		r.Min = v
	}
	if first || v > r.Max {
		r.Max = v
	}
}

// Ranges groups the normalization ranges used by the scorers.
type Ranges struct {
	Profit   Range `json:"avg_profit"`
	ROI      Range `json:"avg_roi"`
	BuyLimit Range `json:"avg_buy_limit"`
}

// ComputeRanges tracks the min and max average profit, ROI and buy limit in a
// single pass. An empty input yields zero ranges.
func ComputeRanges(items []*AggregateStat) Ranges {
	var r Ranges
	for i, s := range items {
		first := i == 0
		r.Profit.include(s.AvgProfit(), first)
		r.ROI.include(s.AvgROI(), first)
		r.BuyLimit.include(s.AvgBuyLimit(), first)
	}
	return r
}
