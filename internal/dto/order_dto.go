package dto

import "github.com/shopspring/decimal"

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name" validate:"max=200"`
	Items        []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderResponse struct {
	ID           string              `json:"id"`
	Number       int                 `json:"number"`
	Name         string              `json:"name"`
	CustomerName string              `json:"customer_name,omitempty"`
	Total        decimal.Decimal     `json:"total"`
	Cancelled    bool                `json:"cancelled"`
	Items        []OrderItemResponse `json:"items"`
	CreatedAt    string              `json:"created_at"`
}

type OrderFilterRequest struct {
	Cancelled string `form:"cancelled"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=50"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
