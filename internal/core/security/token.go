package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bandstand/onboarding-api/internal/core/domain"
)

var (
	ErrMissingSigningKey    = errors.New("token signing key is not configured")
	ErrUnsupportedAlgorithm = errors.New("unsupported token signing algorithm")
)

var hmacMethods = map[string]*jwt.SigningMethodHMAC{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// TokenConfig is the process-wide signing configuration, built once at
// startup. It is never mutated afterwards.
type TokenConfig struct {
	key    []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
}

// NewTokenConfig validates the signing key, algorithm name and default TTL.
func NewTokenConfig(key, algorithm string, ttl time.Duration) (TokenConfig, error) {
	if key == "" {
		return TokenConfig{}, ErrMissingSigningKey
	}
	method, ok := hmacMethods[algorithm]
	if !ok {
		return TokenConfig{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
	if ttl <= 0 {
		return TokenConfig{}, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return TokenConfig{key: []byte(key), method: method, ttl: ttl}, nil
}

// Algorithm returns the JWT "alg" name.
func (c TokenConfig) Algorithm() string { return c.method.Alg() }

// TTL returns the default token lifetime.
func (c TokenConfig) TTL() time.Duration { return c.ttl }

// tokenClaims is the wire shape of a token payload. Pointers distinguish an
// absent claim from a zero value (role 0 is admin).
type tokenClaims struct {
	UserID *string `json:"user_id,omitempty"`
	Role   *int    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and decodes HMAC-signed JWTs carrying a principal.
type TokenCodec struct {
	cfg TokenConfig
	now func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

func NewTokenCodec(cfg TokenConfig, opts ...CodecOption) *TokenCodec {
	c := &TokenCodec{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultTTL returns the configured token lifetime.
func (c *TokenCodec) DefaultTTL() time.Duration { return c.cfg.ttl }

// Issue signs a token for p that expires ttl from now. A ttl <= 0 produces a
// token that is already expired. Positive expiries are rounded up to the next
// whole second because JWT timestamps have second precision.
func (c *TokenCodec) Issue(p domain.Principal, ttl time.Duration) (string, error) {
	if p.SubjectID == "" {
		return "", fmt.Errorf("issue token: empty subject")
	}
	if !p.Role.Valid() {
		return "", fmt.Errorf("issue token: %w", domain.ErrUnknownRole)
	}

	now := c.now()
	exp := now.Add(ttl)
	if ttl > 0 {
		if whole := exp.Truncate(time.Second); whole.Before(exp) {
			exp = whole.Add(time.Second)
		}
	}

	subject := p.SubjectID
	role := p.Role.Wire()
	claims := tokenClaims{
		UserID: &subject,
		Role:   &role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(c.cfg.method, claims).SignedString(c.cfg.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and algorithm, then expiry, then the
// presence and type of the identity claims. Every failure wraps
// domain.ErrInvalidToken.
func (c *TokenCodec) Decode(raw string) (domain.Principal, error) {
	var claims tokenClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, c.keyFunc,
		jwt.WithValidMethods([]string{c.cfg.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !tok.Valid {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	if claims.UserID == nil || *claims.UserID == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing user_id claim", domain.ErrInvalidToken)
	}
	if claims.Role == nil {
		return domain.Principal{}, fmt.Errorf("%w: missing role claim", domain.ErrInvalidToken)
	}
	role, err := domain.RoleFromWire(*claims.Role)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	return domain.Principal{SubjectID: *claims.UserID, Role: role}, nil
}

func (c *TokenCodec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return c.cfg.key, nil
}
