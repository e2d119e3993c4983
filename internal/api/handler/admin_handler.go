package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bandstand/onboarding-api/internal/core/domain"
	"github.com/bandstand/onboarding-api/internal/core/ports"
)

// AdminHandler serves the review queue. Every route is AdminOnly.
type AdminHandler struct {
	service ports.ApplicationService
}

func NewAdminHandler(service ports.ApplicationService) *AdminHandler {
	return &AdminHandler{service: service}
}

type reviewResponse struct {
	Message       string `json:"message"`
	ApplicationID string `json:"application_id"`
}

// Applications handles GET /api/admin/applications.
//
// @Summary      List all applications
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.ArtistApplication
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/admin/applications [get]
func (h *AdminHandler) Applications(c echo.Context) error {
	apps, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	if apps == nil {
		apps = []*domain.ArtistApplication{}
	}
	return c.JSON(http.StatusOK, apps)
}

// Approve handles POST /api/admin/applications/:id/approve.
//
// @Summary      Approve an application
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  reviewResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/admin/applications/{id}/approve [post]
func (h *AdminHandler) Approve(c echo.Context) error {
	return h.review(c, h.service.Approve, "Application approved successfully")
}

// Reject handles POST /api/admin/applications/:id/reject.
//
// @Summary      Reject an application
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  reviewResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/admin/applications/{id}/reject [post]
func (h *AdminHandler) Reject(c echo.Context) error {
	return h.review(c, h.service.Reject, "Application rejected successfully")
}

type reviewFunc func(ctx context.Context, reviewer domain.Principal, id string) error

func (h *AdminHandler) review(c echo.Context, decide reviewFunc, message string) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := decide(c.Request().Context(), p, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviewResponse{Message: message, ApplicationID: id})
}

// Stats handles GET /api/admin/stats.
//
// @Summary      Dashboard counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ApplicationStats
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
