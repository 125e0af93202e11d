package model

import "testing"

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"superadmin", "admin", "employee", "client"} {
		t.Run(valid, func(t *testing.T) {
			role, err := ParseRole(valid)
			if err != nil {
				t.Fatalf("ParseRole(%q) failed: %v", valid, err)
			}
			if string(role) != valid {
				t.Errorf("role = %q, want %q", role, valid)
			}
		})
	}

	for _, invalid := range []string{"", "root", "Admin", "CLIENT", "super admin"} {
		t.Run("rejects "+invalid, func(t *testing.T) {
			if _, err := ParseRole(invalid); err == nil {
				t.Errorf("ParseRole(%q) should fail", invalid)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleClient.Valid() {
		t.Error("client should be valid")
	}
	if Role("owner").Valid() {
		t.Error("owner should be invalid")
	}
}
