package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bandstand/onboarding-api/internal/api/middleware"
	"github.com/bandstand/onboarding-api/internal/core/domain"
)

// principal returns the caller injected by the Auth middleware. Its absence
// means the route was registered without a policy, which is reported as an
// authentication failure rather than trusted.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}
