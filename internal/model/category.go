package model

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies products within a tenant.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Subcategories []Subcategory `gorm:"foreignKey:CategoryID"`
}

// TableName overrides GORM's default pluralization (categorys → categories).
func (Category) TableName() string { return "categories" }

// Subcategory belongs to exactly one category. A product's subcategory must
// belong to its category — mutations violating this are rejected.
type Subcategory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Subcategory) TableName() string { return "subcategories" }
