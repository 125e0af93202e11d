package model

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a booking.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Reservation is a tenant-scoped booking of a property for a client, handled
// by an agent.
type Reservation struct {
	ID         uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	StartDate  time.Time         `json:"start_date" gorm:"not null"`
	EndDate    time.Time         `json:"end_date" gorm:"not null"`
	Status     ReservationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	PropertyID uuid.UUID         `json:"property_id" gorm:"type:uuid;index;not null"`
	ClientID   uuid.UUID         `json:"client_id" gorm:"type:uuid;index;not null"`
	AgentID    uuid.UUID         `json:"agent_id" gorm:"type:uuid;index;not null"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
