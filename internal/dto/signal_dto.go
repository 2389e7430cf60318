package dto

import "github.com/shopspring/decimal"

type AlertResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Product   string `json:"product"`
	Kind      string `json:"kind"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

type RecommendationResponse struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	Product           string           `json:"product"`
	Kind              string           `json:"kind"`
	SuggestedQuantity *int             `json:"suggested_quantity,omitempty"`
	SuggestedDiscount *decimal.Decimal `json:"suggested_discount,omitempty"`
	Confidence        int              `json:"confidence"`
	Reason            string           `json:"reason"`
	CreatedAt         string           `json:"created_at"`
}
