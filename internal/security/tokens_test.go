package security

import (
	"testing"
	"time"
)

func newTestTokenProvider() *TokenProvider {
	return NewTokenProvider([]byte("test-secret-at-least-32-bytes-long"), "campus-dispatch", "campus-dispatch-api", 15*time.Minute)
}

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p := newTestTokenProvider()
	token, exp, err := p.IssueAccess("op-1", "moderator")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("access token empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	operatorID, role, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if operatorID != "op-1" || role != "moderator" {
		t.Errorf("ValidateAccess = (%q, %q), want (op-1, moderator)", operatorID, role)
	}
}

func TestTokenProvider_ValidateInvalid(t *testing.T) {
	p := newTestTokenProvider()
	if _, _, err := p.ValidateAccess("not-a-token"); err != ErrInvalidToken {
		t.Errorf("want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_RejectsWrongSecret(t *testing.T) {
	p := newTestTokenProvider()
	token, _, err := p.IssueAccess("op-1", "operator")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	other := NewTokenProvider([]byte("a-completely-different-signing-key"), "campus-dispatch", "campus-dispatch-api", 15*time.Minute)
	if _, _, err := other.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("want ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenProvider_RejectsWrongIssuer(t *testing.T) {
	other := NewTokenProvider([]byte("test-secret-at-least-32-bytes-long"), "someone-else", "campus-dispatch-api", 15*time.Minute)
	token, _, err := other.IssueAccess("op-1", "operator")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	p := newTestTokenProvider()
	if _, _, err := p.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("want ErrInvalidToken for wrong issuer, got %v", err)
	}
}
