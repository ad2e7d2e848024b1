// Package auth issues and verifies the HS256 access tokens that identify
// users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("signing secret is empty")
)

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}

	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	return &Manager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue signs a token whose subject is userID.
//
// Parameters:
//   - userID: the user the token identifies.
//
// Returns:
//   - string: the signed token.
//   - time.Time: when the token expires.
//   - error: non-nil if userID is empty or signing fails.
func (m *Manager) Issue(userID string) (string, time.Time, error) {
	const op = "auth.Manager.Issue"

	if userID == "" {
		return "", time.Time{}, fmt.Errorf("%s: empty user id", op)
	}

	now := m.now().UTC()
	exp := now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, exp, nil
}

// Verify checks raw and returns the user id it carries.
func (m *Manager) Verify(raw string) (string, error) {
	const op = "auth.Manager.Verify"

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return "", fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%s: %w: no subject", op, ErrInvalidToken)
	}

	return claims.Subject, nil
}

type ctxKey struct{}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the signed-in user of ctx, or "" when there is none.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
