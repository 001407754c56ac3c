package margin

import (
	"math"

	"github.com/guttosm/flippulse/internal/domain/models"
)

const (
	// TaxFreeThreshold is the highest sale price that is exempt from tax.
	TaxFreeThreshold = 50
	// TaxRetention is the share of the sale price kept after tax.
	TaxRetention = 0.98
)

// Profit returns the profit of selling qty units bought at buy for sell.
//
// Behavior:
//   - sell <= TaxFreeThreshold: (sell - buy) * qty
//   - otherwise: (sell * TaxRetention - buy) * qty, truncated toward zero
//
// The function is pure and total.
func Profit(buy, sell, qty int64) int64 {
	if sell <= TaxFreeThreshold {
		return (sell - buy) * qty
	}
	return int64((float64(sell)*TaxRetention - float64(buy)) * float64(qty))
}

// FlipProfit returns the profit of a flip using its realized sale price when
// completed and its offer price while still in progress.
func FlipProfit(f models.Flip) int64 {
	return Profit(f.Buy, f.SalePrice(), f.Limit)
}

// TaxFreeProfit ignores the sale tax entirely.
func TaxFreeProfit(f models.Flip) int64 {
	return (f.SalePrice() - f.Buy) * f.Limit
}

// ROI returns the return on investment in percent.
// A buy price of zero yields 100.
func ROI(buy, sell int64) float64 {
	if buy == 0 {
		return 100
	}
	return float64(sell-buy) / float64(buy) * 100
}

// FlipROI returns the ROI of a flip based on its sale price.
func FlipROI(f models.Flip) float64 {
	return ROI(f.Buy, f.SalePrice())
}

// Margin is the per-unit spread between the instant buy and instant sell prices.
func Margin(instaBuy, instaSell int64) int64 {
	return instaBuy - instaSell
}

// ProfitWithCut returns the profit of a margin after undercutting the
// price by cut coins on both the buy and the sell offer.
func ProfitWithCut(margin, limit, cut int64) int64 {
	return limit * (margin - cut*2)
}

// Estimation is the outcome of a planned flip.
type Estimation struct {
	BuyOffer        int64   `json:"buy_offer"`
	SellOffer       int64   `json:"sell_offer"`
	Margin          int64   `json:"margin"`
	ROI             float64 `json:"roi"`
	RequiredCapital int64   `json:"required_capital"`
	Profit          int64   `json:"profit"`
}

// Estimate plans a flip that overbids the instant sell price and
// undercuts the instant buy price by one coin, with tax applied to the sale.
func Estimate(instaBuy, instaSell, limit int64) Estimation {
	sellOffer := instaBuy - 1
	buyOffer := instaSell + 1
	m := Margin(int64(float64(sellOffer)*TaxRetention), buyOffer)

	roi := 0.0
	if instaSell != 0 {
		roi = math.Round(float64(m)/float64(instaSell)*100*100) / 100
	}

	return Estimation{
		BuyOffer:        buyOffer,
		SellOffer:       sellOffer,
		Margin:          m,
		ROI:             roi,
		RequiredCapital: instaSell * limit,
		Profit:          ProfitWithCut(m, limit, 0),
	}
}

// Totals recomputes the log counters from scratch: the number of completed,
// non-cancelled flips and their summed profit.
func Totals(flips []models.Flip) models.Totals {
	var t models.Totals
	for _, f := range flips {
		if f.Cancelled || !f.Done {
			continue
		}
		t.FlipsDone++
		t.Profit += FlipProfit(f)
	}
	return t
}
