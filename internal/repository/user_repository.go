package repository

import (
	"errors"

	"rental-service/internal/model"
	"rental-service/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements UserStore and TokenStore over the tenant's Postgres
// schema. All queries name the table through the namespace, never through the
// connection's search path.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) users(ns tenant.Namespace) *gorm.DB {
	return s.db.Table(ns.Table("users"))
}

func (s *GormStore) tokens(ns tenant.Namespace) *gorm.DB {
	return s.db.Table(ns.Table("tokens"))
}

// CreateUser inserts the user into the namespace's users table.
func (s *GormStore) CreateUser(ns tenant.Namespace, user *model.User) error {
	return s.users(ns).Create(user).Error
}

// GetUserByID returns the user, or (nil, nil) when no row matches.
func (s *GormStore) GetUserByID(ns tenant.Namespace, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := s.users(ns).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail returns the user with that exact email, or (nil, nil).
func (s *GormStore) GetUserByEmail(ns tenant.Namespace, email string) (*model.User, error) {
	var user model.User
	err := s.users(ns).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users in the namespace.
func (s *GormStore) ListUsers(ns tenant.Namespace) ([]model.User, error) {
	var users []model.User
	if err := s.users(ns).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser saves the full user row.
func (s *GormStore) UpdateUser(ns tenant.Namespace, user *model.User) error {
	return s.users(ns).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"username":      user.Username,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          user.Role,
		"is_active":     user.IsActive,
		"updated_at":    user.UpdatedAt,
	}).Error
}

// DeleteUser removes the user and any token pair it holds.
func (s *GormStore) DeleteUser(ns tenant.Namespace, id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(ns.Table("tokens")).Where("user_id = ?", id).Delete(&model.Token{}).Error; err != nil {
			return err
		}
		return tx.Table(ns.Table("users")).Where("id = ?", id).Delete(&model.User{}).Error
	})
}

// CountUsers returns the number of users in the namespace.
func (s *GormStore) CountUsers(ns tenant.Namespace) (int64, error) {
	var count int64
	if err := s.users(ns).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetTokenByUserID returns the user's active pair, or (nil, nil).
func (s *GormStore) GetTokenByUserID(ns tenant.Namespace, userID uuid.UUID) (*model.Token, error) {
	var token model.Token
	err := s.tokens(ns).Where("user_id = ?", userID).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// ReplaceToken atomically swaps the user's active pair. The user row is
// locked for the transaction so concurrent signin/refresh for the same user
// serialize instead of leaving two live pairs.
func (s *GormStore) ReplaceToken(ns tenant.Namespace, token *model.Token) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		err := tx.Table(ns.Table("users")).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", token.UserID).
			First(&user).Error
		if err != nil {
			return err
		}
		if err := tx.Table(ns.Table("tokens")).Where("user_id = ?", token.UserID).Delete(&model.Token{}).Error; err != nil {
			return err
		}
		return tx.Table(ns.Table("tokens")).Create(token).Error
	})
}

// DeleteToken removes the user's pair; deleting a missing pair is a no-op.
func (s *GormStore) DeleteToken(ns tenant.Namespace, userID uuid.UUID) error {
	return s.tokens(ns).Where("user_id = ?", userID).Delete(&model.Token{}).Error
}
