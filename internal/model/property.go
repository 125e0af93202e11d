package model

import (
	"time"

	"github.com/google/uuid"
)

// PropertyStatus is the lifecycle state of a listed property.
type PropertyStatus string

const (
	PropertyAvailable PropertyStatus = "available"
	PropertyRented    PropertyStatus = "rented"
	PropertySold      PropertyStatus = "sold"
)

// Property is a tenant-scoped rental listing. Address is unique within the
// tenant's namespace.
type Property struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string         `json:"title" gorm:"type:varchar(50);uniqueIndex;not null"`
	Description string         `json:"description" gorm:"type:varchar(500)"`
	Price       int            `json:"price" gorm:"not null"` // cents
	Status      PropertyStatus `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
	Address     string         `json:"address" gorm:"type:varchar(100);uniqueIndex;not null"`
	CoverImage  string         `json:"cover_image,omitempty" gorm:"type:varchar(255)"`
	AgentID     uuid.UUID      `json:"agent_id" gorm:"type:uuid;index;not null"`
	ListedAt    time.Time      `json:"listed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
