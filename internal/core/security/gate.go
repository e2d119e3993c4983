package security

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/bandstand/onboarding-api/internal/core/domain"
)

// TokenDecoder verifies a raw token and returns the principal it carries.
type TokenDecoder interface {
	Decode(raw string) (domain.Principal, error)
}

// Gate authenticates bearer tokens. It holds no mutable state and is safe
// for concurrent use.
type Gate struct {
	decoder TokenDecoder
	log     zerolog.Logger
}

func NewGate(decoder TokenDecoder, log zerolog.Logger) *Gate {
	return &Gate{decoder: decoder, log: log}
}

// Authenticate returns the principal for raw. A missing token and every
// decode failure yield the same domain.ErrUnauthenticated, so callers cannot
// tell an expired token from a forged or malformed one.
func (g *Gate) Authenticate(raw string) (domain.Principal, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	p, err := g.decoder.Decode(raw)
	if err != nil {
		g.log.Debug().Err(err).Msg("token rejected")
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

// BearerToken extracts the token from an Authorization header value. It
// returns "" when the header is absent or not a bearer credential.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
