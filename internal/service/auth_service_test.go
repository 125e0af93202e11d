package service

import (
	"errors"
	"testing"
	"time"

	"rental-service/internal/apperr"
	"rental-service/internal/model"
	"rental-service/internal/tenant"
	"rental-service/pkg/hash"
	"rental-service/pkg/jwtutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserStore keeps users in memory, partitioned by schema the way the
// real store partitions by Postgres schema.
type fakeUserStore struct {
	users map[string]map[uuid.UUID]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]map[uuid.UUID]*model.User)}
}

func (f *fakeUserStore) schema(ns tenant.Namespace) map[uuid.UUID]*model.User {
	if f.users[ns.Schema] == nil {
		f.users[ns.Schema] = make(map[uuid.UUID]*model.User)
	}
	return f.users[ns.Schema]
}

// CreateUser mirrors the table's unique indexes on email and username;
// NULL usernames never collide, matching Postgres semantics.
func (f *fakeUserStore) CreateUser(ns tenant.Namespace, user *model.User) error {
	for _, u := range f.schema(ns) {
		if u.Email == user.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
		if u.Username != nil && user.Username != nil && *u.Username == *user.Username {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	copied := *user
	f.schema(ns)[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetUserByID(ns tenant.Namespace, id uuid.UUID) (*model.User, error) {
	if u, ok := f.schema(ns)[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeUserStore) GetUserByEmail(ns tenant.Namespace, email string) (*model.User, error) {
	for _, u := range f.schema(ns) {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) ListUsers(ns tenant.Namespace) ([]model.User, error) {
	var out []model.User
	for _, u := range f.schema(ns) {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) UpdateUser(ns tenant.Namespace, user *model.User) error {
	copied := *user
	f.schema(ns)[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) DeleteUser(ns tenant.Namespace, id uuid.UUID) error {
	delete(f.schema(ns), id)
	return nil
}

func (f *fakeUserStore) CountUsers(ns tenant.Namespace) (int64, error) {
	return int64(len(f.schema(ns))), nil
}

// fakeTokenStore holds at most one pair per user, like the real table's
// unique index on user_id.
type fakeTokenStore struct {
	tokens   map[string]map[uuid.UUID]*model.Token
	replaces int
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]map[uuid.UUID]*model.Token)}
}

func (f *fakeTokenStore) schema(ns tenant.Namespace) map[uuid.UUID]*model.Token {
	if f.tokens[ns.Schema] == nil {
		f.tokens[ns.Schema] = make(map[uuid.UUID]*model.Token)
	}
	return f.tokens[ns.Schema]
}

func (f *fakeTokenStore) GetTokenByUserID(ns tenant.Namespace, userID uuid.UUID) (*model.Token, error) {
	if tok, ok := f.schema(ns)[userID]; ok {
		copied := *tok
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeTokenStore) ReplaceToken(ns tenant.Namespace, token *model.Token) error {
	copied := *token
	f.schema(ns)[token.UserID] = &copied
	f.replaces++
	return nil
}

func (f *fakeTokenStore) DeleteToken(ns tenant.Namespace, userID uuid.UUID) error {
	delete(f.schema(ns), userID)
	return nil
}

// fakePlanSource returns a fixed plan for every namespace.
type fakePlanSource struct {
	plan *model.Plan
}

func (f *fakePlanSource) PlanFor(ns tenant.Namespace) (*model.Plan, error) {
	return f.plan, nil
}

func newTestAuthService(t *testing.T, users *fakeUserStore, tokens *fakeTokenStore, plans PlanSource) *AuthService {
	t.Helper()
	codec, err := jwtutil.New(&jwtutil.Config{
		SigningKey: "test-signing-key",
		Algorithm:  "HS256",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("jwtutil.New failed: %v", err)
	}
	hasher := hash.NewPasswordHasher(bcrypt.MinCost)
	return NewAuthService(users, tokens, hasher, codec, plans, zap.NewNop())
}

func TestSignup(t *testing.T) {
	ns := tenant.Namespace{Schema: "tenant_acme"}

	t.Run("creates a client and issues a bearer pair", func(t *testing.T) {
		users := newFakeUserStore()
		tokens := newFakeTokenStore()
		svc := newTestAuthService(t, users, tokens, nil)

		result, err := svc.Signup(ns, SignupInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Password123!",
		})
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		if result.Role != model.RoleClient {
			t.Errorf("role = %s, want client", result.Role)
		}
		if result.Token.TokenType != model.TokenTypeBearer {
			t.Errorf("token_type = %s, want Bearer", result.Token.TokenType)
		}
		if result.Token.AccessToken == "" || result.Token.RefreshToken == "" {
			t.Error("expected a full token pair")
		}

		stored, _ := users.GetUserByEmail(ns, "alice@example.com")
		if stored == nil {
			t.Fatal("user was not persisted")
		}
		if stored.PasswordHash == "Password123!" {
			t.Error("password stored in plaintext")
		}
		if !stored.IsActive {
			t.Error("new user should be active")
		}
	})

	t.Run("rejects an invalid email", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeUserStore(), newFakeTokenStore(), nil)
		_, err := svc.Signup(ns, SignupInput{Email: "not-an-email", Password: "Password123!"})
		if !apperr.IsKind(err, "invalid_email") {
			t.Errorf("expected invalid_email, got %v", err)
		}
	})

	t.Run("rejects a weak password with the violated rule", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeUserStore(), newFakeTokenStore(), nil)
		_, err := svc.Signup(ns, SignupInput{Email: "bob@example.com", Password: "password"})
		if !apperr.IsKind(err, "invalid_password") {
			t.Fatalf("expected invalid_password, got %v", err)
		}
		if apperr.Message(err) != "password must contain an uppercase letter" {
			t.Errorf("unexpected message: %q", apperr.Message(err))
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		users := newFakeUserStore()
		svc := newTestAuthService(t, users, newFakeTokenStore(), nil)
		input := SignupInput{Email: "carol@example.com", Password: "Password123!"}
		if _, err := svc.Signup(ns, input); err != nil {
			t.Fatalf("first Signup failed: %v", err)
		}
		_, err := svc.Signup(ns, input)
		if !apperr.IsKind(err, "user_already_exists") {
			t.Errorf("expected user_already_exists, got %v", err)
		}
	})

	t.Run("requested privileged role is ignored", func(t *testing.T) {
		users := newFakeUserStore()
		svc := newTestAuthService(t, users, newFakeTokenStore(), nil)
		result, err := svc.Signup(ns, SignupInput{
			Email:    "mallory@example.com",
			Password: "Password123!",
			Role:     "superadmin",
		})
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		if result.Role != model.RoleClient {
			t.Errorf("role = %s, want client", result.Role)
		}
	})

	t.Run("plan user limit is enforced", func(t *testing.T) {
		users := newFakeUserStore()
		plans := &fakePlanSource{plan: &model.Plan{MaxUsers: 1}}
		svc := newTestAuthService(t, users, newFakeTokenStore(), plans)
		if _, err := svc.Signup(ns, SignupInput{Email: "one@example.com", Password: "Password123!"}); err != nil {
			t.Fatalf("first Signup failed: %v", err)
		}
		_, err := svc.Signup(ns, SignupInput{Email: "two@example.com", Password: "Password123!"})
		if !apperr.IsKind(err, "plan_limit_reached") {
			t.Errorf("expected plan_limit_reached, got %v", err)
		}
	})

	t.Run("username is optional and absent usernames never collide", func(t *testing.T) {
		users := newFakeUserStore()
		svc := newTestAuthService(t, users, newFakeTokenStore(), nil)
		if _, err := svc.Signup(ns, SignupInput{Email: "eve@example.com", Password: "Password123!"}); err != nil {
			t.Fatalf("first Signup failed: %v", err)
		}
		if _, err := svc.Signup(ns, SignupInput{Email: "frank@example.com", Password: "Password123!"}); err != nil {
			t.Errorf("second username-less Signup should succeed, got %v", err)
		}

		stored, _ := users.GetUserByEmail(ns, "eve@example.com")
		if stored == nil || stored.Username != nil {
			t.Error("empty username should be stored as NULL")
		}
	})

	t.Run("tenants do not share users", func(t *testing.T) {
		users := newFakeUserStore()
		svc := newTestAuthService(t, users, newFakeTokenStore(), nil)
		input := SignupInput{Email: "dave@example.com", Password: "Password123!"}
		if _, err := svc.Signup(tenant.Namespace{Schema: "tenant_a"}, input); err != nil {
			t.Fatalf("Signup in tenant_a failed: %v", err)
		}
		if _, err := svc.Signup(tenant.Namespace{Schema: "tenant_b"}, input); err != nil {
			t.Errorf("same email in another tenant should succeed, got %v", err)
		}
	})
}

func TestSignin(t *testing.T) {
	ns := tenant.Namespace{Schema: "tenant_acme"}

	signup := func(t *testing.T, svc *AuthService, email string) *AuthResult {
		t.Helper()
		result, err := svc.Signup(ns, SignupInput{Email: email, Password: "Password123!"})
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		return result
	}

	t.Run("valid credentials issue a fresh pair", func(t *testing.T) {
		tokens := newFakeTokenStore()
		svc := newTestAuthService(t, newFakeUserStore(), tokens, nil)
		created := signup(t, svc, "alice@example.com")

		result, err := svc.Signin(ns, SigninInput{Email: "alice@example.com", Password: "Password123!"})
		if err != nil {
			t.Fatalf("Signin failed: %v", err)
		}
		if result.UserID != created.UserID {
			t.Errorf("user_id = %s, want %s", result.UserID, created.UserID)
		}
		if result.Token.TokenType != model.TokenTypeBearer {
			t.Errorf("token_type = %s, want Bearer", result.Token.TokenType)
		}
	})

	t.Run("unknown email is user_not_found", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeUserStore(), newFakeTokenStore(), nil)
		_, err := svc.Signin(ns, SigninInput{Email: "ghost@example.com", Password: "Password123!"})
		if !apperr.IsKind(err, "user_not_found") {
			t.Errorf("expected user_not_found, got %v", err)
		}
	})

	t.Run("wrong password never yields a pair", func(t *testing.T) {
		tokens := newFakeTokenStore()
		svc := newTestAuthService(t, newFakeUserStore(), tokens, nil)
		created := signup(t, svc, "bob@example.com")
		issuedAtSignup := tokens.replaces

		for i := 0; i < 2; i++ {
			_, err := svc.Signin(ns, SigninInput{Email: "bob@example.com", Password: "Wrong123!"})
			if !apperr.IsKind(err, "invalid_password") {
				t.Fatalf("expected invalid_password, got %v", err)
			}
		}
		if tokens.replaces != issuedAtSignup {
			t.Error("failed signins must not touch the stored pair")
		}
		if tok, _ := tokens.GetTokenByUserID(ns, created.UserID); tok == nil {
			t.Error("the signup pair should survive failed signins")
		}
	})

	t.Run("repeated signins keep exactly one pair", func(t *testing.T) {
		tokens := newFakeTokenStore()
		svc := newTestAuthService(t, newFakeUserStore(), tokens, nil)
		created := signup(t, svc, "carol@example.com")

		var last *AuthResult
		for i := 0; i < 3; i++ {
			result, err := svc.Signin(ns, SigninInput{Email: "carol@example.com", Password: "Password123!"})
			if err != nil {
				t.Fatalf("Signin %d failed: %v", i, err)
			}
			last = result
		}

		stored, _ := tokens.GetTokenByUserID(ns, created.UserID)
		if stored == nil {
			t.Fatal("no stored pair after signin")
		}
		if stored.RefreshToken != last.Token.RefreshToken {
			t.Error("stored pair is not the newest one")
		}
		if len(tokens.schema(ns)) != 1 {
			t.Errorf("stored pairs = %d, want 1", len(tokens.schema(ns)))
		}
	})
}

func TestSignoutAndRefresh(t *testing.T) {
	ns := tenant.Namespace{Schema: "tenant_acme"}

	t.Run("signout removes the pair and is idempotent", func(t *testing.T) {
		tokens := newFakeTokenStore()
		svc := newTestAuthService(t, newFakeUserStore(), tokens, nil)
		created, err := svc.Signup(ns, SignupInput{Email: "alice@example.com", Password: "Password123!"})
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}

		removed, err := svc.Signout(ns, created.UserID)
		if err != nil {
			t.Fatalf("Signout failed: %v", err)
		}
		if !removed {
			t.Error("first Signout should report a removed pair")
		}
		if tok, _ := tokens.GetTokenByUserID(ns, created.UserID); tok != nil {
			t.Error("pair still stored after signout")
		}

		removed, err = svc.Signout(ns, created.UserID)
		if err != nil {
			t.Errorf("second Signout should be a no-op, got %v", err)
		}
		if removed {
			t.Error("second Signout should report nothing removed")
		}
	})

	t.Run("refresh rotates the stored pair", func(t *testing.T) {
		tokens := newFakeTokenStore()
		svc := newTestAuthService(t, newFakeUserStore(), tokens, nil)
		created, err := svc.Signup(ns, SignupInput{Email: "bob@example.com", Password: "Password123!"})
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}

		result, err := svc.Refresh(ns, created.UserID, created.Token.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if result.Token.RefreshToken == created.Token.RefreshToken {
			t.Error("rotation returned the same refresh token")
		}
		stored, _ := tokens.GetTokenByUserID(ns, created.UserID)
		if stored == nil {
			t.Fatal("no stored pair after refresh")
		}
		if stored.RefreshToken != result.Token.RefreshToken {
			t.Error("stored pair was not rotated")
		}
	})

	t.Run("rotated-out refresh token is rejected", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeUserStore(), newFakeTokenStore(), nil)
		created, err := svc.Signup(ns, SignupInput{Email: "dave@example.com", Password: "Password123!"})
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}

		rotated, err := svc.Refresh(ns, created.UserID, created.Token.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		// The pre-rotation token is unexpired and well-signed but no longer
		// the stored one.
		_, err = svc.Refresh(ns, created.UserID, created.Token.RefreshToken)
		if !apperr.IsKind(err, "invalid_credentials") {
			t.Errorf("stale token: expected invalid_credentials, got %v", err)
		}

		if _, err := svc.Refresh(ns, created.UserID, rotated.Token.RefreshToken); err != nil {
			t.Errorf("current token should still rotate, got %v", err)
		}
	})

	t.Run("refresh without a stored pair fails closed", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeUserStore(), newFakeTokenStore(), nil)
		_, err := svc.Refresh(ns, uuid.New(), "whatever")
		if !apperr.IsKind(err, "invalid_credentials") {
			t.Errorf("expected invalid_credentials, got %v", err)
		}
	})

	t.Run("refresh after signout fails closed", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeUserStore(), newFakeTokenStore(), nil)
		created, err := svc.Signup(ns, SignupInput{Email: "carol@example.com", Password: "Password123!"})
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		if _, err := svc.Signout(ns, created.UserID); err != nil {
			t.Fatalf("Signout failed: %v", err)
		}
		_, err = svc.Refresh(ns, created.UserID, created.Token.RefreshToken)
		if !apperr.IsKind(err, "invalid_credentials") {
			t.Errorf("expected invalid_credentials, got %v", err)
		}
	})

	t.Run("signin reports whether it replaced a pair", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeUserStore(), newFakeTokenStore(), nil)
		created, err := svc.Signup(ns, SignupInput{Email: "erin@example.com", Password: "Password123!"})
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}

		result, err := svc.Signin(ns, SigninInput{Email: "erin@example.com", Password: "Password123!"})
		if err != nil {
			t.Fatalf("Signin failed: %v", err)
		}
		if !result.PairReplaced {
			t.Error("signin over a live pair should report replacement")
		}

		if _, err := svc.Signout(ns, created.UserID); err != nil {
			t.Fatalf("Signout failed: %v", err)
		}
		result, err = svc.Signin(ns, SigninInput{Email: "erin@example.com", Password: "Password123!"})
		if err != nil {
			t.Fatalf("Signin failed: %v", err)
		}
		if result.PairReplaced {
			t.Error("signin with no stored pair should not report replacement")
		}
	})
}
