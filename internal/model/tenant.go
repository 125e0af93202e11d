package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant lives in the public schema and maps a customer account to the
// Postgres schema holding its data.
type Tenant struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string         `json:"name" gorm:"type:varchar(50);not null"`
	SchemaName   string         `json:"schema_name" gorm:"type:varchar(63);uniqueIndex;not null"`
	CustomDomain string         `json:"custom_domain" gorm:"type:varchar(255)"`
	PlanID       *uuid.UUID     `json:"plan_id,omitempty" gorm:"type:uuid;index"`
	Plan         *Plan          `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
