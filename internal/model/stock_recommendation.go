package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recommendation kinds.
const (
	RecommendRestock     = "restock"
	RecommendReduceStock = "reduce_stock"
	RecommendDiscount    = "discount"
	RecommendDiscontinue = "discontinue"
)

// StockRecommendation is a derived signal appended after a mutation, same
// append-only / read-time-filtered contract as StockAlert. Overlapping rules
// may append more than one recommendation per mutation; the read side keeps
// the highest-confidence one per product.
type StockRecommendation struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind              string    `gorm:"type:varchar(20);not null"`
	SuggestedQuantity *int
	SuggestedDiscount *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Confidence        int              `gorm:"not null"` // 0–100
	Applied           bool             `gorm:"not null;default:false"`
	AppliedAt         *time.Time
	Reason            string
	CreatedAt         time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
