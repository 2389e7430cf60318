package dto

import "github.com/shopspring/decimal"

type BulkUpdateRequest struct {
	Kind          string          `json:"kind" validate:"required,oneof=percentage_increase percentage_decrease fixed_increase fixed_decrease set_price"`
	Amount        decimal.Decimal `json:"amount" validate:"required,min=0"`
	Scope         string          `json:"scope" validate:"required,oneof=all category subcategory"`
	CategoryID    *string         `json:"category_id" validate:"omitempty,uuid"`
	SubcategoryID *string         `json:"subcategory_id" validate:"omitempty,uuid"`
	Reason        string          `json:"reason" validate:"required,min=1,max=500"`
}

type BulkSampleEntryResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
}

type BulkUpdateResponse struct {
	ID           string                    `json:"id"`
	Kind         string                    `json:"kind"`
	Amount       decimal.Decimal           `json:"amount"`
	Scope        string                    `json:"scope"`
	Reason       string                    `json:"reason"`
	ProductCount int                       `json:"product_count"`
	Sample       []BulkSampleEntryResponse `json:"sample"`
	Truncated    bool                      `json:"truncated"`
	CreatedAt    string                    `json:"created_at"`
}

type BulkUpdateListResponse struct {
	Data  []BulkUpdateResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
