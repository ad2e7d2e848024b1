package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(Config{Secret: "test-secret", Issuer: "cinebook", TTL: time.Hour})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	m := newManager(t)

	tok, exp, err := m.Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry %v is not in the future", exp)
	}

	got, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != "user-42" {
		t.Fatalf("subject: got %v, want %v", got, "user-42")
	}
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	tok, _, err := m.Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other, err := NewManager(Config{Secret: "other-secret", Issuer: "cinebook"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	expired := newManager(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name string
		m    *Manager
		tok  string
	}{
		{name: "wrong secret", m: other, tok: tok},
		{name: "expired", m: m, tok: old},
		{name: "garbage", m: m, tok: "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tt.m.Verify(tt.tok); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

func TestUserIDContext(t *testing.T) {
	t.Parallel()

	if got := UserID(context.Background()); got != "" {
		t.Fatalf("empty ctx: got %q", got)
	}
	if got := UserID(WithUserID(context.Background(), "u1")); got != "u1" {
		t.Fatalf("got %v, want %v", got, "u1")
	}
}
