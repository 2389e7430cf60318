package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Price change classifications.
const (
	PriceChangeIncrease = "increase"
	PriceChangeDecrease = "decrease"
	PriceChangeDiscount = "discount"
	PriceChangeBulk     = "bulk_update"
	PriceChangeManual   = "manual"
)

// PriceHistory records one selling-price change on a product.
// Same append-only contract as StockMovement, keyed on price.
type PriceHistory struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OldPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	NewPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Change    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Kind      string          `gorm:"type:varchar(20);not null;default:'manual'"`
	Reason    string
	UserID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization (price_histories → price_history).
func (PriceHistory) TableName() string { return "price_history" }
