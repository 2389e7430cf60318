package model

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the owning account for products, orders, and users. OwnerEmail
// receives low-stock notifications.
type Tenant struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"uniqueIndex;not null"`
	OwnerEmail string    `gorm:"not null"`
	Active     bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
