package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	Description    *string         `json:"description"`
	CategoryID     string          `json:"category_id" validate:"required,uuid"`
	SubcategoryID  *string         `json:"subcategory_id" validate:"omitempty,uuid"`
	Quantity       int             `json:"quantity" validate:"min=0"`
	MinStockLevel  int             `json:"min_stock_level" validate:"min=0"`
	Price          decimal.Decimal `json:"price" validate:"required,min=0"`
	CostPrice      decimal.Decimal `json:"cost_price" validate:"min=0"`
	DiscountPct    decimal.Decimal `json:"discount_pct" validate:"min=0,max=100"`
	DiscountAmount decimal.Decimal `json:"discount_amount" validate:"min=0"`
	DiscountStart  *time.Time      `json:"discount_start"`
	DiscountEnd    *time.Time      `json:"discount_end"`
}

// UpdateProductRequest uses pointers so that absent fields are left untouched.
// Reason is carried into the ledger entry when quantity or price changes.
type UpdateProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string          `json:"description"`
	CategoryID     *string          `json:"category_id" validate:"omitempty,uuid"`
	SubcategoryID  *string          `json:"subcategory_id" validate:"omitempty,uuid"`
	Quantity       *int             `json:"quantity" validate:"omitempty,min=0"`
	MinStockLevel  *int             `json:"min_stock_level" validate:"omitempty,min=0"`
	Price          *decimal.Decimal `json:"price" validate:"omitempty,min=0"`
	CostPrice      *decimal.Decimal `json:"cost_price" validate:"omitempty,min=0"`
	DiscountPct    *decimal.Decimal `json:"discount_pct" validate:"omitempty,min=0,max=100"`
	DiscountAmount *decimal.Decimal `json:"discount_amount" validate:"omitempty,min=0"`
	DiscountStart  *time.Time       `json:"discount_start"`
	DiscountEnd    *time.Time       `json:"discount_end"`
	Reason         string           `json:"reason"`
}

type ProductFilter struct {
	Active        string `form:"active"`
	Name          string `form:"name"`
	CategoryID    string `form:"category_id"`
	SubcategoryID string `form:"subcategory_id"`
	BelowMinStock bool   `form:"below_min_stock"`
	Page          int    `form:"page,default=1"`
	Limit         int    `form:"limit,default=50"`
}

type ProductResponse struct {
	ID             string          `json:"id"`
	TenantID       string          `json:"tenant_id"`
	Name           string          `json:"name"`
	Description    *string         `json:"description,omitempty"`
	CategoryID     string          `json:"category_id"`
	SubcategoryID  *string         `json:"subcategory_id,omitempty"`
	Quantity       int             `json:"quantity"`
	MinStockLevel  int             `json:"min_stock_level"`
	Price          decimal.Decimal `json:"price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Active         bool            `json:"active"`
	CreatedAt      string          `json:"created_at"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
