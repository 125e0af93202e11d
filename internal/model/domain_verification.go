package model

import (
	"time"

	"github.com/google/uuid"
)

// DomainVerificationStatus tracks custom domain ownership checks.
type DomainVerificationStatus string

const (
	DomainVerificationPending  DomainVerificationStatus = "pending"
	DomainVerificationVerified DomainVerificationStatus = "verified"
	DomainVerificationFailed   DomainVerificationStatus = "failed"
)

// DomainVerification records the state of a tenant's custom domain check.
// Lives in the public schema next to Tenant.
type DomainVerification struct {
	ID         uuid.UUID                `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID                `json:"tenant_id" gorm:"type:uuid;uniqueIndex;not null"`
	Domain     string                   `json:"domain" gorm:"type:varchar(255);not null"`
	Status     DomainVerificationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	VerifiedAt *time.Time               `json:"verified_at,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}
