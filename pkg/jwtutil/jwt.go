package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenKind tags what a token may be used for. Access and refresh tokens are
// never interchangeable at verification time.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// ErrInvalidToken is returned for any verification failure: bad signature,
// malformed structure, missing claims or expiry.
var ErrInvalidToken = errors.New("invalid token")

// Config holds signing configuration. Secret and algorithm come from the
// environment, never from code.
type Config struct {
	SigningKey string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Claims carries the subject user ID and the token kind alongside the
// registered expiry claims.
type Claims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// JWTUtil signs and verifies authentication tokens.
type JWTUtil struct {
	config *Config
	method jwt.SigningMethod
}

// New creates a token codec from the given configuration. The algorithm must
// be one of the HMAC family; anything else is a configuration error.
func New(config *Config) (*JWTUtil, error) {
	if config == nil || config.SigningKey == "" {
		return nil, errors.New("jwt signing key not configured")
	}
	var method jwt.SigningMethod
	switch config.Algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", config.Algorithm)
	}
	return &JWTUtil{config: config, method: method}, nil
}

// AccessTTL returns the configured access token lifetime.
func (j *JWTUtil) AccessTTL() time.Duration {
	return j.config.AccessTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (j *JWTUtil) RefreshTTL() time.Duration {
	return j.config.RefreshTTL
}

// Issue creates a signed token for the subject user with the given kind and
// lifetime. The jti claim makes every issuance distinct, so rotating a pair
// never reproduces the previous tokens even within one clock second.
func (j *JWTUtil) Issue(subjectID uuid.UUID, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subjectID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(j.method, claims)
	return token.SignedString([]byte(j.config.SigningKey))
}

// IssuePair issues an access and refresh token for the subject with the
// configured lifetimes.
func (j *JWTUtil) IssuePair(subjectID uuid.UUID) (access string, refresh string, err error) {
	access, err = j.Issue(subjectID, KindAccess, j.config.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = j.Issue(subjectID, KindRefresh, j.config.RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Parse verifies the token and returns the subject user ID and kind. Any
// failure, including an unknown kind claim or a subject that is not a UUID,
// yields ErrInvalidToken.
func (j *JWTUtil) Parse(tokenString string) (uuid.UUID, TokenKind, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}
	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return uuid.Nil, "", ErrInvalidToken
	}
	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	return subjectID, claims.Kind, nil
}
