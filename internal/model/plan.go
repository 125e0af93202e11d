package model

import (
	"time"

	"github.com/google/uuid"
)

// Plan sets the capacity limits for tenants subscribed to it. A zero limit
// means unlimited.
type Plan struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string    `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	MaxUsers      int       `json:"max_users" gorm:"not null"`
	MaxProperties int       `json:"max_properties" gorm:"not null"`
	PricePerMonth int       `json:"price_per_month" gorm:"not null"` // cents
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
