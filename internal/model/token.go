package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenTypeBearer is the only token_type ever issued.
const TokenTypeBearer = "Bearer"

// Token is the single active access/refresh pair for a user. The unique index
// on UserID enforces at most one pair per user at the storage layer.
type Token struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	AccessToken  string    `json:"access_token" gorm:"type:text;not null"`
	RefreshToken string    `json:"refresh_token" gorm:"type:text;not null"`
	TokenType    string    `json:"token_type" gorm:"type:varchar(20);not null;default:'Bearer'"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TokenPair is the wire shape returned to clients on signup/signin/refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}
