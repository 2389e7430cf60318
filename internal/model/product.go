package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the unit of inventory. Quantity is never written directly by
// handlers — every change goes through the inventory service so that the
// stock movement ledger stays reconcilable:
//
//	quantity == quantity at creation + sum(movement.QuantityChange)
type Product struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"index;not null"`
	Description   *string
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SubcategoryID *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity      int             `gorm:"not null;default:0"`
	MinStockLevel int             `gorm:"not null;default:10"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// Discount terms — either percentage or fixed amount, optionally windowed
	DiscountPct    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	DiscountStart  *time.Time
	DiscountEnd    *time.Time
	Active         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Tenant      *Tenant      `gorm:"foreignKey:TenantID"`
	Category    *Category    `gorm:"foreignKey:CategoryID"`
	Subcategory *Subcategory `gorm:"foreignKey:SubcategoryID"`
}
