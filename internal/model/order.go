package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a sales order owned by one tenant. Cancelling an order releases
// the stock reserved by its items; the Cancelled flag guards against a
// double release.
type Order struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Number       int       `gorm:"not null;index"`
	Name         string    `gorm:"not null"` // "ORD-<number>", used in ledger reasons
	CustomerName string
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cancelled    bool            `gorm:"not null;default:false"`
	CancelledAt  *time.Time
	CreatedBy    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem reserves a positive quantity of one product. UnitPrice is frozen
// at line creation and not recomputed when the product price changes later.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
