package ports

import (
	"context"
	"time"

	"github.com/bandstand/onboarding-api/internal/core/domain"
)

// PasswordHasher hashes and verifies account secrets. Implementations may
// queue the work on a worker pool, hence the context.
type PasswordHasher interface {
	Hash(ctx context.Context, secret string) (string, error)
	Verify(ctx context.Context, secret, hash string) bool
}

// TokenIssuer mints signed bearer tokens for a principal.
type TokenIssuer interface {
	Issue(p domain.Principal, ttl time.Duration) (string, error)
}

// Authenticator turns a raw bearer token into a principal.
type Authenticator interface {
	Authenticate(raw string) (domain.Principal, error)
}
