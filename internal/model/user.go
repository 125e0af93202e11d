package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a tenant-scoped account. Rows live in the tenant's schema,
// so email and username uniqueness holds per tenant, not globally. Username
// is optional and stored as NULL when absent, so accounts without one never
// collide on the unique index.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username     *string   `json:"username,omitempty" gorm:"type:varchar(50);uniqueIndex"`
	Email        string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'client'"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
