package dto

import "github.com/guttosm/flippulse/internal/domain/models"

// CreateFlipRequest is the body of POST /api/v1/flips.
type CreateFlipRequest struct {
	Item    string `json:"item" binding:"required" example:"Yew logs"`
	Buy     int64  `json:"buy" binding:"required,gt=0" example:"277"`
	Sell    int64  `json:"sell" binding:"gte=0" example:"290"`
	Limit   int64  `json:"limit" binding:"required,gt=0" example:"24999"`
	Account string `json:"account,omitempty" example:"main"`
}

// ToFlip converts the request into a new active flip.
func (r CreateFlipRequest) ToFlip() models.Flip {
	return models.Flip{
		Item:    r.Item,
		Buy:     r.Buy,
		Sell:    r.Sell,
		Limit:   r.Limit,
		Account: r.Account,
	}
}

// SellFlipRequest is the body of POST /api/v1/flips/active/{id}/sell.
// Zero price sells at the offer price, zero quantity keeps the bought one.
type SellFlipRequest struct {
	Price    int64 `json:"price" binding:"gte=0" example:"289"`
	Quantity int64 `json:"quantity" binding:"gte=0" example:"0"`
}

// UpdateFlipRequest is the body of PATCH /api/v1/flips/active/{id}.
// Omitted or zero fields are left unchanged.
type UpdateFlipRequest struct {
	Item    string `json:"item,omitempty" example:"Magic logs"`
	Buy     int64  `json:"buy,omitempty" binding:"gte=0" example:"0"`
	Sell    int64  `json:"sell,omitempty" binding:"gte=0" example:"295"`
	Limit   int64  `json:"limit,omitempty" binding:"gte=0" example:"0"`
	Account string `json:"account,omitempty" example:""`
}

// ActiveFlipResponse is a flip waiting to be sold.
type ActiveFlipResponse struct {
	ID       int         `json:"id" example:"0"`
	Position int         `json:"position" example:"1412"`
	Flip     models.Flip `json:"flip"`
}

// SaleResponse is returned after selling an active flip.
type SaleResponse struct {
	Flip   models.Flip   `json:"flip"`
	Profit int64         `json:"profit" example:"310"`
	ROI    float64       `json:"roi" example:"4.69"`
	Totals models.Totals `json:"totals"`
}
