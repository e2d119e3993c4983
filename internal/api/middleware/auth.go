package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/bandstand/onboarding-api/internal/api/metrics"
	"github.com/bandstand/onboarding-api/internal/core/domain"
	"github.com/bandstand/onboarding-api/internal/core/ports"
	"github.com/bandstand/onboarding-api/internal/core/security"
)

const principalKey = "principal"

// AccountLookup resolves a subject id to a stored account.
type AccountLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type authOptions struct {
	accounts AccountLookup
}

// AuthOption customises the Auth middleware.
type AuthOption func(*authOptions)

// WithLivenessCheck makes Auth look the subject up on every request. A token
// whose account no longer exists is rejected as unauthenticated.
func WithLivenessCheck(accounts AccountLookup) AuthOption {
	return func(o *authOptions) { o.accounts = accounts }
}

// Auth validates the bearer token and stores the resulting principal in the
// echo context. Failures are returned as domain.ErrUnauthenticated for the
// HTTP error handler to render.
func Auth(authn ports.Authenticator, opts ...AuthOption) echo.MiddlewareFunc {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := security.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			p, err := authn.Authenticate(raw)
			if err != nil {
				metrics.AuthDecisionsTotal.WithLabelValues("authentication", "unauthenticated").Inc()
				return err
			}

			if o.accounts != nil {
				if _, err := o.accounts.FindByID(c.Request().Context(), p.SubjectID); err != nil {
					if errors.Is(err, domain.ErrAccountNotFound) {
						metrics.AuthDecisionsTotal.WithLabelValues("authentication", "unauthenticated").Inc()
						return domain.ErrUnauthenticated
					}
					return err
				}
			}

			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by Auth.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}
