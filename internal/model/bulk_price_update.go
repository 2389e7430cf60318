package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BulkPriceUpdate is the aggregated audit record for one bulk price batch.
// Per-product detail lives in price_history; this row records the batch as a
// whole: how many products changed, the shared reason, and a sample of
// old/new price pairs capped at BulkSampleCap (Truncated marks overflow).
type BulkPriceUpdate struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID        *uuid.UUID      `gorm:"type:uuid"`
	Kind          string          `gorm:"type:varchar(30);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Scope         string          `gorm:"type:varchar(20);not null"` // all | category | subcategory
	CategoryID    *uuid.UUID      `gorm:"type:uuid"`
	SubcategoryID *uuid.UUID      `gorm:"type:uuid"`
	Reason        string          `gorm:"not null"`
	ProductCount  int             `gorm:"not null"`
	Sample        []byte          `gorm:"type:jsonb"` // []BulkSampleEntry
	Truncated     bool            `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

// BulkSampleCap bounds the per-product sample stored on the audit row.
const BulkSampleCap = 100

// BulkSampleEntry is one old/new price pair in the audit sample.
type BulkSampleEntry struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
}
