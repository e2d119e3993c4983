package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bandstand/onboarding-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "could not validate credentials"},
		{"invalid token is collapsed", fmt.Errorf("%w: token is expired", domain.ErrInvalidToken), http.StatusUnauthorized, "could not validate credentials"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "insufficient permissions"},
		{"bad login", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{"account gone", domain.ErrAccountNotFound, http.StatusNotFound, "user not found"},
		{"duplicate email", fmt.Errorf("create user: %w", domain.ErrUserExists), http.StatusConflict, "email already registered"},
		{"password over bcrypt limit", fmt.Errorf("register: %w", domain.ErrPasswordTooLong), http.StatusBadRequest, "password must be at most 72 bytes"},
		{"bad id", domain.ErrInvalidID, http.StatusBadRequest, "invalid application id"},
		{"not pending", domain.ErrApplicationNotPending, http.StatusBadRequest, domain.ErrApplicationNotPending.Error()},
		{"review locked", domain.ErrReviewInProgress, http.StatusConflict, domain.ErrReviewInProgress.Error()},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "email is required"), http.StatusBadRequest, "email is required"},
		{"unexpected", errors.New("mongo: connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), rec)

			handler(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_BearerChallenge(t *testing.T) {
	handler := NewHTTPErrorHandler(zerolog.Nop())

	e := echo.New()
	rec := httptest.NewRecorder()
	handler(domain.ErrUnauthenticated, e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	if got := rec.Header().Get(echo.HeaderWWWAuthenticate); got != "Bearer" {
		t.Fatalf("expected WWW-Authenticate Bearer, got %q", got)
	}

	rec = httptest.NewRecorder()
	handler(domain.ErrInvalidCredentials, e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec))
	if got := rec.Header().Get(echo.HeaderWWWAuthenticate); got != "" {
		t.Fatalf("login failure must not send a bearer challenge, got %q", got)
	}
}
