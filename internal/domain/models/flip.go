package models

// DefaultAccount is assumed for flips recorded without an account.
const DefaultAccount = "main"

// Flip represents one buy-then-sell transaction entered by the user.
//
// Field order matches the keys of the flip log document:
//
//  1. Item      - item name, the aggregation key
//  2. Buy       - price paid per unit
//  3. Sell      - offer (asking) price per unit
//  4. Sold      - realized sale price per unit, 0 until sold
//  5. Limit     - quantity bought
//  6. Cancelled - the offer was cancelled, no profit data
//  7. Done      - the flip is completed
//  8. Account   - originating account, informational only
//
// The position of a flip in FlipLog.Flips is its trade index.
type Flip struct {
	Item      string `json:"item" example:"Yew logs"`
	Buy       int64  `json:"buy" example:"277"`
	Sell      int64  `json:"sell" example:"290"`
	Sold      int64  `json:"sold" example:"0"`
	Limit     int64  `json:"limit" example:"24999"`
	Cancelled bool   `json:"cancelled" example:"false"`
	Done      bool   `json:"done" example:"false"`
	Account   string `json:"account" example:"main"`
}

// SalePrice returns the price used for profit and ROI math: the realized
// price once the flip is done, the offer price before that. A done flip
// without a realized price sold for nothing; Repair flags those.
func (f Flip) SalePrice() int64 {
	if f.Done {
		return f.Sold
	}
	return f.Sell
}

// Active reports whether the flip is still waiting to be sold.
func (f Flip) Active() bool {
	return !f.Done && !f.Cancelled
}

// Totals holds the running counters stored next to the flips.
type Totals struct {
	Profit    int64 `json:"profit"`
	FlipsDone int64 `json:"flips_done"`
}

// FlipLog is the in-memory form of the whole flip document.
type FlipLog struct {
	Stats Totals `json:"stats"`
	Flips []Flip `json:"flips"`
}
