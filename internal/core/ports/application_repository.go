package ports

import (
	"context"
	"time"

	"github.com/bandstand/onboarding-api/internal/core/domain"
)

// ApplicationRepository persists artist applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.ArtistApplication) (string, error)
	FindByID(ctx context.Context, id string) (*domain.ArtistApplication, error)
	// FindActiveByUser returns the user's pending or approved application, or
	// domain.ErrApplicationNotFound.
	FindActiveByUser(ctx context.Context, userID string) (*domain.ArtistApplication, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.ArtistApplication, error)
	// ListWithEmail returns all applications newest first, joined with the
	// applicant's email.
	ListWithEmail(ctx context.Context) ([]*domain.ArtistApplication, error)
	// UpdateStatus moves a pending application to status. It returns
	// domain.ErrApplicationNotPending if the stored status is no longer pending.
	UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus, reviewerID string, at time.Time) error
	CountByStatus(ctx context.Context, status domain.ApplicationStatus) (int64, error)
}

// ArtistRepository persists approved artists.
type ArtistRepository interface {
	Create(ctx context.Context, artist *domain.Artist) (string, error)
	FindByUser(ctx context.Context, userID string) (*domain.Artist, error)
}

// ReviewLocker serialises reviews of a single application across processes.
type ReviewLocker interface {
	// Acquire returns false when another reviewer holds the lock. On success
	// the returned token identifies this holder to Release.
	Acquire(ctx context.Context, applicationID string) (token string, ok bool, err error)
	Release(ctx context.Context, applicationID, token string) error
}
