package service

import (
	"time"

	"rental-service/internal/apperr"
	"rental-service/internal/model"
	"rental-service/internal/repository"
	"rental-service/internal/tenant"
	"rental-service/pkg/hash"
	"rental-service/pkg/jwtutil"
	"rental-service/pkg/validate"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlanSource exposes the capacity limits attached to a namespace's tenant.
// A nil plan means no limits apply.
type PlanSource interface {
	PlanFor(ns tenant.Namespace) (*model.Plan, error)
}

// SignupInput is the public registration payload. Role is accepted for API
// compatibility but ignored: public signup always yields a client account.
// Privileged accounts are created through the user management API.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// SigninInput is the credential payload for signin.
type SigninInput struct {
	Email    string
	Password string
}

// AuthResult is returned by signup, signin and refresh. PairReplaced reports
// whether an existing pair was rotated out, so the boundary can keep the
// active-token gauge honest without re-querying the store.
type AuthResult struct {
	UserID       uuid.UUID       `json:"user_id"`
	Role         model.Role      `json:"role"`
	Token        model.TokenPair `json:"token"`
	Message      string          `json:"message"`
	PairReplaced bool            `json:"-"`
}

// AuthService orchestrates signup, signin, signout and refresh over the
// credential hasher, token codec and identity store. It holds no per-request
// state; the namespace is a parameter on every call.
type AuthService struct {
	users  repository.UserStore
	tokens repository.TokenStore
	hasher *hash.PasswordHasher
	codec  *jwtutil.JWTUtil
	plans  PlanSource
	log    *zap.Logger
}

// NewAuthService wires the auth orchestration. plans may be nil when no
// capacity limits should be enforced.
func NewAuthService(users repository.UserStore, tokens repository.TokenStore, hasher *hash.PasswordHasher, codec *jwtutil.JWTUtil, plans PlanSource, log *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		codec:  codec,
		plans:  plans,
		log:    log,
	}
}

// Signup validates the input, creates a client user in the namespace and
// issues its first token pair.
func (s *AuthService) Signup(ns tenant.Namespace, input SignupInput) (*AuthResult, error) {
	if !validate.Email(input.Email) {
		return nil, apperr.InvalidEmail()
	}
	if err := validate.PasswordError(input.Password); err != nil {
		return nil, apperr.WeakPassword(err)
	}
	if input.Role != "" && input.Role != string(model.RoleClient) {
		// Role escalation via public signup is ignored, not honored.
		s.log.Warn("Signup requested a privileged role, forcing client",
			zap.String("email", input.Email),
			zap.String("requested_role", input.Role))
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
		Role:         model.RoleClient,
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

	pair, err := s.issuePair(ns, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("User signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("schema", ns.Schema))
	return &AuthResult{
		UserID:  user.ID,
		Role:    user.Role,
		Token:   *pair,
		Message: "User created successfully",
	}, nil
}

// Signin verifies the credentials and replaces any existing token pair with a
// fresh one, keeping at most one active pair per user.
func (s *AuthService) Signin(ns tenant.Namespace, input SigninInput) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ns, input.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.UserNotFound()
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, apperr.InvalidPassword()
	}

	existing, err := s.tokens.GetTokenByUserID(ns, user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	pair, err := s.issuePair(ns, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("User signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("schema", ns.Schema))
	return &AuthResult{
		UserID:       user.ID,
		Role:         user.Role,
		Token:        *pair,
		Message:      "User signed in successfully",
		PairReplaced: existing != nil,
	}, nil
}

// Signout deletes the user's active pair and reports whether one existed.
// Signing out with no active pair is a no-op, not an error.
func (s *AuthService) Signout(ns tenant.Namespace, userID uuid.UUID) (bool, error) {
	current, err := s.tokens.GetTokenByUserID(ns, userID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	if current == nil {
		return false, nil
	}
	if err := s.tokens.DeleteToken(ns, userID); err != nil {
		return false, apperr.Internal(err)
	}
	s.log.Info("User signed out", zap.String("user_id", userID.String()))
	return true, nil
}

// Refresh rotates the user's pair. The caller has already verified the
// presented refresh token's signature and kind at the boundary; this
// operation additionally requires it to be the stored one, so a token
// rotated out by a later signin or refresh is dead even before it expires.
func (s *AuthService) Refresh(ns tenant.Namespace, userID uuid.UUID, refreshToken string) (*AuthResult, error) {
	current, err := s.tokens.GetTokenByUserID(ns, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if current == nil || current.RefreshToken != refreshToken {
		return nil, apperr.Credentials()
	}

	user, err := s.users.GetUserByID(ns, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.Credentials()
	}

	pair, err := s.issuePair(ns, userID)
	if err != nil {
		return nil, err
	}

	s.log.Info("Token pair refreshed", zap.String("user_id", userID.String()))
	return &AuthResult{
		UserID:       userID,
		Role:         user.Role,
		Token:        *pair,
		Message:      "Token refreshed successfully",
		PairReplaced: true,
	}, nil
}

// issuePair signs a fresh access+refresh pair and persists it as the user's
// only active pair.
func (s *AuthService) issuePair(ns tenant.Namespace, userID uuid.UUID) (*model.TokenPair, error) {
	access, refresh, err := s.codec.IssuePair(userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	token := &model.Token{
		ID:           uuid.New(),
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    model.TokenTypeBearer,
		ExpiresAt:    time.Now().Add(s.codec.AccessTTL()),
	}
	if err := s.tokens.ReplaceToken(ns, token); err != nil {
		return nil, apperr.Internal(err)
	}

	return &model.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.ExpiresAt,
	}, nil
}

// checkUserLimit enforces the tenant plan's max_users cap.
func (s *AuthService) checkUserLimit(ns tenant.Namespace) error {
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
