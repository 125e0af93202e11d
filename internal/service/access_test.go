package service

import (
	"testing"

	"rental-service/internal/apperr"
	"rental-service/internal/model"
	"rental-service/internal/tenant"

	"github.com/google/uuid"
)

func TestRequireAnyOf(t *testing.T) {
	access := NewAccessControl(newFakeUserStore())

	t.Run("role in the allowed set passes", func(t *testing.T) {
		err := access.RequireAnyOf(model.RoleAdmin, model.RoleSuperadmin, model.RoleAdmin)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("role outside the allowed set is forbidden", func(t *testing.T) {
		err := access.RequireAnyOf(model.RoleClient, model.RoleSuperadmin, model.RoleAdmin)
		if !apperr.IsKind(err, "forbidden") {
			t.Errorf("expected forbidden, got %v", err)
		}
	})
}

func TestCanUpdateTarget(t *testing.T) {
	ns := tenant.Namespace{Schema: "tenant_acme"}
	users := newFakeUserStore()
	access := NewAccessControl(users)

	seed := func(t *testing.T, role model.Role) *model.User {
		t.Helper()
		id := uuid.New()
		u := &model.User{ID: id, Email: id.String() + "@example.com", Role: role, IsActive: true}
		if err := users.CreateUser(ns, u); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		return u
	}

	superadmin := seed(t, model.RoleSuperadmin)
	admin := seed(t, model.RoleAdmin)
	employee := seed(t, model.RoleEmployee)
	client := seed(t, model.RoleClient)

	cases := []struct {
		name    string
		caller  *model.User
		target  *model.User
		allowed bool
	}{
		{"superadmin updates admin", superadmin, admin, true},
		{"superadmin updates employee", superadmin, employee, true},
		{"superadmin updates client", superadmin, client, true},
		{"admin updates employee", admin, employee, true},
		{"admin updates client", admin, client, true},
		{"admin cannot update superadmin", admin, superadmin, false},
		{"employee updates client", employee, client, true},
		{"employee cannot update admin", employee, admin, false},
		{"employee cannot update superadmin", employee, superadmin, false},
		{"employee cannot update employee", employee, &model.User{ID: uuid.New(), Role: model.RoleEmployee}, false},
		{"client cannot update client", client, &model.User{ID: uuid.New(), Role: model.RoleClient}, false},
		{"client cannot update admin", client, admin, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := access.CanUpdateTarget(ns, tc.caller, tc.target.ID)
			if tc.allowed && err != nil {
				t.Errorf("expected allowed, got %v", err)
			}
			if !tc.allowed && !apperr.IsKind(err, "forbidden") {
				t.Errorf("expected forbidden, got %v", err)
			}
		})
	}

	t.Run("everyone may update themselves", func(t *testing.T) {
		for _, caller := range []*model.User{superadmin, admin, employee, client} {
			if err := access.CanUpdateTarget(ns, caller, caller.ID); err != nil {
				t.Errorf("%s self-update: unexpected error %v", caller.Role, err)
			}
		}
	})

	t.Run("target role is read at check time", func(t *testing.T) {
		promoted := seed(t, model.RoleClient)
		if err := access.CanUpdateTarget(ns, employee, promoted.ID); err != nil {
			t.Fatalf("employee should update a client, got %v", err)
		}
		promoted.Role = model.RoleAdmin
		if err := users.UpdateUser(ns, promoted); err != nil {
			t.Fatalf("promote failed: %v", err)
		}
		if err := access.CanUpdateTarget(ns, employee, promoted.ID); !apperr.IsKind(err, "forbidden") {
			t.Errorf("expected forbidden after promotion, got %v", err)
		}
	})
}
