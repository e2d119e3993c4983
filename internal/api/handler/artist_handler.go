package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bandstand/onboarding-api/internal/core/domain"
	"github.com/bandstand/onboarding-api/internal/core/ports"
)

// ArtistHandler serves the applicant and artist side of onboarding.
type ArtistHandler struct {
	service ports.ApplicationService
}

func NewArtistHandler(service ports.ApplicationService) *ArtistHandler {
	return &ArtistHandler{service: service}
}

type applyRequest struct {
	StageName string `json:"stage_name" validate:"required,max=100"`
	// Genre is a comma separated list.
	Genre string `json:"genre" validate:"required"`
	Bio   string `json:"bio"   validate:"required,max=2000"`
	// PortfolioLinks holds one link per line.
	PortfolioLinks string `json:"portfolio_links"`
}

type applyResponse struct {
	Message       string `json:"message"`
	ApplicationID string `json:"application_id"`
}

// Apply handles POST /api/artist/apply.
//
// @Summary      Submit an artist application
// @Tags         artist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      applyRequest  true  "Application form"
// @Success      201   {object}  applyResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/artist/apply [post]
func (h *ArtistHandler) Apply(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req applyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.service.Submit(c.Request().Context(), p, ports.SubmitApplicationInput{
		StageName:      req.StageName,
		Genre:          req.Genre,
		Bio:            req.Bio,
		PortfolioLinks: req.PortfolioLinks,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, applyResponse{
		Message:       "Application submitted successfully",
		ApplicationID: id,
	})
}

// MyApplications handles GET /api/artist/my-applications.
//
// @Summary      List own applications
// @Tags         artist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.ArtistApplication
// @Failure      401  {object}  errorResponse
// @Router       /api/artist/my-applications [get]
func (h *ArtistHandler) MyApplications(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	apps, err := h.service.ListMine(c.Request().Context(), p)
	if err != nil {
		return err
	}
	if apps == nil {
		apps = []*domain.ArtistApplication{}
	}
	return c.JSON(http.StatusOK, apps)
}

// Profile handles GET /api/artist/profile.
//
// @Summary      Get own artist record
// @Tags         artist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Artist
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/artist/profile [get]
func (h *ArtistHandler) Profile(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	artist, err := h.service.ArtistProfile(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, artist)
}
