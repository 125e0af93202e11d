package service

import (
	"time"

	"rental-service/internal/apperr"
	"rental-service/internal/model"
	"rental-service/internal/repository"
	"rental-service/internal/tenant"
	"rental-service/pkg/hash"
	"rental-service/pkg/validate"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateUserInput is the privileged user-creation payload. Unlike public
// signup, the role is honored after validation.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput carries optional field updates; nil fields are untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *string
	IsActive *bool
}

// UserService implements user management over the identity store, gated by
// access control.
type UserService struct {
	users  repository.UserStore
	access *AccessControl
	hasher *hash.PasswordHasher
	plans  PlanSource
	log    *zap.Logger
}

// NewUserService wires user management. plans may be nil.
func NewUserService(users repository.UserStore, access *AccessControl, hasher *hash.PasswordHasher, plans PlanSource, log *zap.Logger) *UserService {
	return &UserService{users: users, access: access, hasher: hasher, plans: plans, log: log}
}

// Create adds a user with an explicit role. The handler gates this behind
// RequireAnyOf(superadmin, admin).
func (s *UserService) Create(ns tenant.Namespace, input CreateUserInput) (*model.User, error) {
	if !validate.Email(input.Email) {
		return nil, apperr.InvalidEmail()
	}
	if err := validate.PasswordError(input.Password); err != nil {
		return nil, apperr.WeakPassword(err)
	}
	role, err := model.ParseRole(input.Role)
	if err != nil {
		return nil, apperr.InvalidRole(input.Role)
	}

	existing, err := s.users.GetUserByEmail(ns, input.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.UserAlreadyExists(input.Email)
	}

	if err := s.checkUserLimit(ns); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
	}
	if input.Username != "" {
		user.Username = &input.Username
	}
	if err := s.users.CreateUser(ns, user); err != nil {
		s.log.Error("User creation failed after validation",
			zap.String("schema", ns.Schema), zap.Error(err))
		return nil, apperr.UserCreation(err)
	}

	s.log.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
		zap.String("schema", ns.Schema))
	return user, nil
}

// List returns all users in the namespace.
func (s *UserService) List(ns tenant.Namespace) ([]model.User, error) {
	users, err := s.users.ListUsers(ns)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

// GetByID returns the user or UserNotFound.
func (s *UserService) GetByID(ns tenant.Namespace, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetUserByID(ns, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.UserNotFound()
	}
	return user, nil
}

// Update applies the provided fields to the target after access control
// passes. Role changes additionally require an admin-level caller so an
// employee cannot promote a client.
func (s *UserService) Update(ns tenant.Namespace, caller *model.User, targetID uuid.UUID, input UpdateUserInput) (*model.User, error) {
	if err := s.access.CanUpdateTarget(ns, caller, targetID); err != nil {
		return nil, err
	}

	target, err := s.users.GetUserByID(ns, targetID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if target == nil {
		return nil, apperr.UserNotFound()
	}

	if input.Email != nil {
		if !validate.Email(*input.Email) {
			return nil, apperr.InvalidEmail()
		}
		target.Email = *input.Email
	}
	if input.Username != nil {
		if *input.Username == "" {
			target.Username = nil
		} else {
			target.Username = input.Username
		}
	}
	if input.Password != nil {
		if err := validate.PasswordError(*input.Password); err != nil {
			return nil, apperr.WeakPassword(err)
		}
		hashed, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		target.PasswordHash = hashed
	}
	if input.Role != nil {
		role, err := model.ParseRole(*input.Role)
		if err != nil {
			return nil, apperr.InvalidRole(*input.Role)
		}
		if err := s.access.RequireAnyOf(caller.Role, model.RoleSuperadmin, model.RoleAdmin); err != nil {
			return nil, err
		}
		target.Role = role
	}
	if input.IsActive != nil {
		target.IsActive = *input.IsActive
	}
	target.UpdatedAt = time.Now()

	if err := s.users.UpdateUser(ns, target); err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info("User updated",
		zap.String("user_id", targetID.String()),
		zap.String("caller_id", caller.ID.String()))
	return target, nil
}

// Delete removes the user and its token pair.
func (s *UserService) Delete(ns tenant.Namespace, id uuid.UUID) error {
	user, err := s.users.GetUserByID(ns, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.UserNotFound()
	}
	if err := s.users.DeleteUser(ns, id); err != nil {
		return apperr.Internal(err)
	}
	s.log.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *UserService) checkUserLimit(ns tenant.Namespace) error {
	if s.plans == nil {
		return nil
	}
	plan, err := s.plans.PlanFor(ns)
	if err != nil {
		return apperr.Internal(err)
	}
	if plan == nil || plan.MaxUsers <= 0 {
		return nil
	}
	count, err := s.users.CountUsers(ns)
	if err != nil {
		return apperr.Internal(err)
	}
	if count >= int64(plan.MaxUsers) {
		return apperr.PlanLimit("tenant user limit reached")
	}
	return nil
}
