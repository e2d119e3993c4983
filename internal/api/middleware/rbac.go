package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bandstand/onboarding-api/internal/api/metrics"
	"github.com/bandstand/onboarding-api/internal/core/domain"
	"github.com/bandstand/onboarding-api/internal/core/security"
)

// RBAC enforces policy on the principal stored by Auth. A request that never
// went through Auth is treated as unauthenticated.
func RBAC(policy security.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				metrics.AuthDecisionsTotal.WithLabelValues(policy.Name(), "unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}
			if _, err := policy.Authorize(p); err != nil {
				metrics.AuthDecisionsTotal.WithLabelValues(policy.Name(), "forbidden").Inc()
				return err
			}
			metrics.AuthDecisionsTotal.WithLabelValues(policy.Name(), "admitted").Inc()
			return next(c)
		}
	}
}

// Require chains auth and RBAC(policy) so that authentication always runs
// first. Routes declare their policy once, at registration.
func Require(auth echo.MiddlewareFunc, policy security.Policy) echo.MiddlewareFunc {
	rbac := RBAC(policy)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return auth(rbac(next))
	}
}
