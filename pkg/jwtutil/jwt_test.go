package jwtutil

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestUtil(t *testing.T, key string) *JWTUtil {
	t.Helper()
	j, err := New(&Config{
		SigningKey: key,
		Algorithm:  "HS256",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return j
}

func TestNew(t *testing.T) {
	t.Run("empty signing key is rejected", func(t *testing.T) {
		if _, err := New(&Config{SigningKey: ""}); err == nil {
			t.Error("expected an error for an empty signing key")
		}
	})

	t.Run("nil config is rejected", func(t *testing.T) {
		if _, err := New(nil); err == nil {
			t.Error("expected an error for a nil config")
		}
	})

	t.Run("unsupported algorithm is rejected", func(t *testing.T) {
		if _, err := New(&Config{SigningKey: "secret", Algorithm: "RS256"}); err == nil {
			t.Error("expected an error for a non-HMAC algorithm")
		}
	})

	t.Run("empty algorithm defaults to HS256", func(t *testing.T) {
		if _, err := New(&Config{SigningKey: "secret"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestIssueAndParse(t *testing.T) {
	j := newTestUtil(t, "test-signing-key")
	subject := uuid.New()

	t.Run("access token roundtrip", func(t *testing.T) {
		token, err := j.Issue(subject, KindAccess, time.Minute)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		gotID, gotKind, err := j.Parse(token)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if gotID != subject {
			t.Errorf("subject = %s, want %s", gotID, subject)
		}
		if gotKind != KindAccess {
			t.Errorf("kind = %s, want %s", gotKind, KindAccess)
		}
	})

	t.Run("refresh token keeps its kind", func(t *testing.T) {
		token, err := j.Issue(subject, KindRefresh, time.Minute)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		_, gotKind, err := j.Parse(token)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if gotKind != KindRefresh {
			t.Errorf("kind = %s, want %s", gotKind, KindRefresh)
		}
	})

	t.Run("expired token is invalid", func(t *testing.T) {
		token, err := j.Issue(subject, KindAccess, -time.Minute)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if _, _, err := j.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("wrong signing key is invalid", func(t *testing.T) {
		other := newTestUtil(t, "different-signing-key")
		token, err := other.Issue(subject, KindAccess, time.Minute)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if _, _, err := j.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("every issuance is a distinct token", func(t *testing.T) {
		// Same subject, kind and TTL in the same instant must still yield
		// different tokens, or rotation could reproduce the pair it replaces.
		first, err := j.Issue(subject, KindRefresh, time.Minute)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		second, err := j.Issue(subject, KindRefresh, time.Minute)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if first == second {
			t.Error("two issuances produced a byte-identical token")
		}
	})

	t.Run("malformed token is invalid", func(t *testing.T) {
		for _, bad := range []string{"", "not-a-token", "a.b.c"} {
			if _, _, err := j.Parse(bad); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse(%q): expected ErrInvalidToken, got %v", bad, err)
			}
		}
	})
}

func TestIssuePair(t *testing.T) {
	j := newTestUtil(t, "test-signing-key")
	subject := uuid.New()

	access, refresh, err := j.IssuePair(subject)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	if access == refresh {
		t.Fatal("access and refresh tokens must differ")
	}

	accessID, accessKind, err := j.Parse(access)
	if err != nil {
		t.Fatalf("Parse(access) failed: %v", err)
	}
	refreshID, refreshKind, err := j.Parse(refresh)
	if err != nil {
		t.Fatalf("Parse(refresh) failed: %v", err)
	}

	if accessKind != KindAccess || refreshKind != KindRefresh {
		t.Errorf("kinds = %s/%s, want access/refresh", accessKind, refreshKind)
	}
	if accessID != subject || refreshID != subject {
		t.Errorf("subjects = %s/%s, want %s", accessID, refreshID, subject)
	}
}
