package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement kinds, derived from the sign of the quantity change.
const (
	MovementInbound    = "inbound"
	MovementOutbound   = "outbound"
	MovementAdjustment = "adjustment"
)

// StockMovement records one discrete quantity change on a product.
// Rows are append-only — never updated or deleted. Invariant per row:
// QuantityAfter - QuantityBefore == QuantityChange.
type StockMovement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind           string    `gorm:"type:varchar(20);not null"`
	QuantityBefore int       `gorm:"not null"`
	QuantityAfter  int       `gorm:"not null"`
	QuantityChange int       `gorm:"not null"` // positive = inbound, negative = outbound
	Reason         string
	UserID         *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// MovementKindFor maps the sign of a quantity delta to a movement kind.
func MovementKindFor(change int) string {
	switch {
	case change > 0:
		return MovementInbound
	case change < 0:
		return MovementOutbound
	default:
		return MovementAdjustment
	}
}
