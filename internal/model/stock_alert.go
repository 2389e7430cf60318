package model

import (
	"time"

	"github.com/google/uuid"
)

// Alert kinds.
const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
	AlertOverstock  = "overstock"
	AlertNoSales    = "no_sales"
)

// Alert severities, ordered low → critical for read-side sorting.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// StockAlert is a derived signal appended after a mutation. New alerts are
// always inserted — never deduplicated against existing unresolved alerts of
// the same kind. Readers collapse duplicates and re-check the triggering
// condition against current product state.
type StockAlert struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind       string    `gorm:"type:varchar(20);not null"`
	Severity   string    `gorm:"type:varchar(10);not null"`
	Message    string    `gorm:"not null"`
	Read       bool      `gorm:"not null;default:false"`
	Resolved   bool      `gorm:"not null;default:false"`
	ResolvedAt *time.Time
	CreatedAt  time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
