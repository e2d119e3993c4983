package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bandstand/onboarding-api/internal/core/domain"
	"github.com/bandstand/onboarding-api/internal/core/ports"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// updateProfileRequest lists the only writable profile fields. Unknown keys
// such as role or password_hash are dropped by the decoder.
type updateProfileRequest struct {
	Name     *string `json:"name"     validate:"omitempty,max=100"`
	Location *string `json:"location" validate:"omitempty,max=100"`
	Bio      *string `json:"bio"      validate:"omitempty,max=2000"`
}

type updateProfileResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// GetProfile handles GET /api/user/profile.
//
// @Summary      Get own profile
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/user/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/user/profile.
//
// @Summary      Update own profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  updateProfileResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/user/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), p, domain.ProfileUpdate{
		Name:     req.Name,
		Location: req.Location,
		Bio:      req.Bio,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updateProfileResponse{
		Message: "Profile updated successfully",
		User:    user,
	})
}
