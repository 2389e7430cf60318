package dto

import "github.com/shopspring/decimal"

// MovementFilter carries the query parameters of the movement listing.
type MovementFilter struct {
	ProductID string `form:"product_id"`
	Kind      string `form:"kind"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=100"`
}

type MovementResponse struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	Kind           string `json:"kind"`
	QuantityBefore int    `json:"quantity_before"`
	QuantityAfter  int    `json:"quantity_after"`
	QuantityChange int    `json:"quantity_change"`
	Reason         string `json:"reason"`
	CreatedAt      string `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type PriceHistoryResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	Change    decimal.Decimal `json:"change"`
	Kind      string          `json:"kind"`
	Reason    string          `json:"reason"`
	CreatedAt string          `json:"created_at"`
}

type PriceHistoryListResponse struct {
	Data  []PriceHistoryResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
