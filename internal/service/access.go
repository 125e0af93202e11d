package service

import (
	"rental-service/internal/apperr"
	"rental-service/internal/model"
	"rental-service/internal/repository"
	"rental-service/internal/tenant"

	"github.com/google/uuid"
)

// AccessControl gates user-management operations on the role hierarchy
// superadmin > admin > employee > client.
type AccessControl struct {
	users repository.UserStore
}

// NewAccessControl creates the access checker over the identity store.
func NewAccessControl(users repository.UserStore) *AccessControl {
	return &AccessControl{users: users}
}

// RequireAnyOf passes when the caller's role is in the allowed set.
func (a *AccessControl) RequireAnyOf(role model.Role, allowed ...model.Role) error {
	for _, r := range allowed {
		if role == r {
			return nil
		}
	}
	return apperr.Forbidden("")
}

// CanUpdateTarget decides whether the caller may modify the target account:
//
//   - anyone may update their own account
//   - superadmins may update anyone
//   - admins may update anyone except superadmins
//   - employees may update only client accounts
//   - clients may update nobody else
//
// The target's role is read at check time, so a target promoted after the
// request was formed is still protected.
func (a *AccessControl) CanUpdateTarget(ns tenant.Namespace, caller *model.User, targetID uuid.UUID) error {
	if caller.ID == targetID {
		return nil
	}

	switch caller.Role {
	case model.RoleSuperadmin:
		return nil
	case model.RoleAdmin:
		target, err := a.users.GetUserByID(ns, targetID)
		if err != nil {
			return apperr.Internal(err)
		}
		if target != nil && target.Role == model.RoleSuperadmin {
			return apperr.Forbidden("not enough permissions to update superadmin accounts")
		}
		return nil
	case model.RoleEmployee:
		target, err := a.users.GetUserByID(ns, targetID)
		if err != nil {
			return apperr.Internal(err)
		}
		if target != nil && target.Role == model.RoleClient {
			return nil
		}
		return apperr.Forbidden("employees can only update client accounts")
	default:
		return apperr.Forbidden("")
	}
}
