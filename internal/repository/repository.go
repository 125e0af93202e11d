package repository

import (
	"rental-service/internal/model"
	"rental-service/internal/tenant"

	"github.com/google/uuid"
)

// UserStore is the identity store contract. Every method takes the namespace
// explicitly so one process can serve concurrent requests for different
// tenants without shared tenant state.
//
// Lookups by email and username are exact and case-sensitive (Postgres `=`
// on varchar); callers must not rely on case folding.
type UserStore interface {
	CreateUser(ns tenant.Namespace, user *model.User) error
	GetUserByID(ns tenant.Namespace, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ns tenant.Namespace, email string) (*model.User, error)
	ListUsers(ns tenant.Namespace) ([]model.User, error)
	UpdateUser(ns tenant.Namespace, user *model.User) error
	DeleteUser(ns tenant.Namespace, id uuid.UUID) error
	CountUsers(ns tenant.Namespace) (int64, error)
}

// TokenStore persists the single active token pair per user. Get returns
// (nil, nil) when the user holds no pair.
type TokenStore interface {
	GetTokenByUserID(ns tenant.Namespace, userID uuid.UUID) (*model.Token, error)
	ReplaceToken(ns tenant.Namespace, token *model.Token) error
	DeleteToken(ns tenant.Namespace, userID uuid.UUID) error
}
