// Package auth issues and verifies the bearer tokens that identify API callers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devconnector/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "devconnector-api"
	Audience = "devconnector-client"

	// BearerPrefix is prepended to issued tokens so clients can use the
	// login response verbatim as an Authorization header.
	BearerPrefix = "Bearer "

	DefaultTTL = time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the signed token payload.
type Claims struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	jwt.RegisteredClaims
}

// Identity is the authenticated principal decoded from a token.
type Identity struct {
	ID        string
	Name      string
	Avatar    string
	TokenID   string
	ExpiresAt time.Time
}

// Tokens signs and verifies HS256 tokens with a shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime given to newly issued tokens.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for user.
func (t *Tokens) Issue(user *models.User) (string, error) {
	now := t.now()
	claims := Claims{
		ID:     user.ID,
		Name:   user.Name,
		Avatar: user.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns the identity it carries. Any failure maps
// to ErrInvalidToken; the parser's reason is wrapped for logging.
func (t *Tokens) Verify(raw string) (*Identity, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.Subject != claims.ID {
		return nil, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}

	return &Identity{
		ID:        claims.ID,
		Name:      claims.Name,
		Avatar:    claims.Avatar,
		TokenID:   claims.RegisteredClaims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
