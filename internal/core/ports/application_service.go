package ports

import (
	"context"

	"github.com/bandstand/onboarding-api/internal/core/domain"
)

// SubmitApplicationInput is the raw form data of an artist application.
// Genre is comma separated and PortfolioLinks newline separated.
type SubmitApplicationInput struct {
	StageName      string
	Genre          string
	Bio            string
	PortfolioLinks string
}

// ApplicationService handles the artist onboarding workflow.
type ApplicationService interface {
	Submit(ctx context.Context, p domain.Principal, in SubmitApplicationInput) (string, error)
	ListMine(ctx context.Context, p domain.Principal) ([]*domain.ArtistApplication, error)
	ListAll(ctx context.Context) ([]*domain.ArtistApplication, error)
	Approve(ctx context.Context, reviewer domain.Principal, applicationID string) error
	Reject(ctx context.Context, reviewer domain.Principal, applicationID string) error
	Stats(ctx context.Context) (*domain.ApplicationStats, error)
	ArtistProfile(ctx context.Context, p domain.Principal) (*domain.Artist, error)
}
