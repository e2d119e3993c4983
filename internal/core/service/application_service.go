package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bandstand/onboarding-api/internal/api/metrics"
	"github.com/bandstand/onboarding-api/internal/core/domain"
	"github.com/bandstand/onboarding-api/internal/core/ports"
)

type ApplicationService struct {
	apps    ports.ApplicationRepository
	artists ports.ArtistRepository
	users   ports.AuthRepository
	locker  ports.ReviewLocker
	log     zerolog.Logger
	now     func() time.Time
}

func NewApplicationService(
	apps ports.ApplicationRepository,
	artists ports.ArtistRepository,
	users ports.AuthRepository,
	locker ports.ReviewLocker,
	log zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{
		apps:    apps,
		artists: artists,
		users:   users,
		locker:  locker,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit files a new pending application for the caller. A caller may hold
// at most one pending or approved application.
func (s *ApplicationService) Submit(ctx context.Context, p domain.Principal, in ports.SubmitApplicationInput) (string, error) {
	existing, err := s.apps.FindActiveByUser(ctx, p.SubjectID)
	if err == nil && existing != nil {
		return "", domain.ErrApplicationExists
	}
	if err != nil && !errors.Is(err, domain.ErrApplicationNotFound) {
		return "", fmt.Errorf("submit application: %w", err)
	}

	now := s.now()
	app := &domain.ArtistApplication{
		UserID:         p.SubjectID,
		StageName:      strings.TrimSpace(in.StageName),
		Genres:         domain.SplitGenres(in.Genre),
		Bio:            in.Bio,
		PortfolioLinks: domain.SplitLinks(in.PortfolioLinks),
		Status:         domain.ApplicationPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err := s.apps.Create(ctx, app)
	if err != nil {
		return "", fmt.Errorf("submit application: %w", err)
	}

	metrics.ApplicationsSubmittedTotal.Inc()
	s.log.Info().Str("application_id", id).Str("user_id", p.SubjectID).Msg("application submitted")
	return id, nil
}

func (s *ApplicationService) ListMine(ctx context.Context, p domain.Principal) ([]*domain.ArtistApplication, error) {
	return s.apps.ListByUser(ctx, p.SubjectID)
}

func (s *ApplicationService) ListAll(ctx context.Context) ([]*domain.ArtistApplication, error) {
	return s.apps.ListWithEmail(ctx)
}

// Approve marks the application approved, promotes the applicant to
// RoleArtist and creates their artist record. Tokens the applicant already
// holds keep the old role until they log in again.
func (s *ApplicationService) Approve(ctx context.Context, reviewer domain.Principal, applicationID string) error {
	return s.review(ctx, reviewer, applicationID, domain.ApplicationApproved)
}

func (s *ApplicationService) Reject(ctx context.Context, reviewer domain.Principal, applicationID string) error {
	return s.review(ctx, reviewer, applicationID, domain.ApplicationRejected)
}

func (s *ApplicationService) review(ctx context.Context, reviewer domain.Principal, id string, decision domain.ApplicationStatus) error {
	token, acquired, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return fmt.Errorf("review application: %w", err)
	}
	if !acquired {
		return domain.ErrReviewInProgress
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), id, token); err != nil {
			s.log.Warn().Err(err).Str("application_id", id).Msg("failed to release review lock")
		}
	}()

	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !app.Status.CanTransitionTo(decision) {
		return domain.ErrApplicationNotPending
	}

	now := s.now()
	if err := s.apps.UpdateStatus(ctx, id, decision, reviewer.SubjectID, now); err != nil {
		return err
	}

	if decision == domain.ApplicationApproved {
		// The status write above is already committed; a failure from here on
		// leaves an approved application whose applicant was never promoted.
		if err := s.users.UpdateRole(ctx, app.UserID, domain.RoleArtist); err != nil {
			s.logIncompleteApproval(err, id, app.UserID, "promote applicant")
			return fmt.Errorf("promote applicant: %w", err)
		}
		artist := &domain.Artist{
			UserID:         app.UserID,
			StageName:      app.StageName,
			Genres:         app.Genres,
			Bio:            app.Bio,
			PortfolioLinks: app.PortfolioLinks,
			CreatedAt:      now,
		}
		if _, err := s.artists.Create(ctx, artist); err != nil {
			s.logIncompleteApproval(err, id, app.UserID, "create artist")
			return fmt.Errorf("create artist: %w", err)
		}
	}

	metrics.ApplicationsReviewedTotal.WithLabelValues(string(decision)).Inc()
	s.log.Info().
		Str("application_id", id).
		Str("reviewer_id", reviewer.SubjectID).
		Str("decision", string(decision)).
		Msg("application reviewed")
	return nil
}

func (s *ApplicationService) logIncompleteApproval(err error, applicationID, userID, step string) {
	s.log.Error().
		Err(err).
		Str("application_id", applicationID).
		Str("user_id", userID).
		Str("failed_step", step).
		Bool("manual_repair", true).
		Msg("application approved but applicant promotion incomplete")
}

// Stats gathers the admin dashboard counters concurrently.
func (s *ApplicationService) Stats(ctx context.Context) (*domain.ApplicationStats, error) {
	var stats domain.ApplicationStats
	artist := domain.RoleArtist

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.users.Count(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalArtists, err = s.users.Count(gctx, &artist)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingApplications, err = s.apps.CountByStatus(gctx, domain.ApplicationPending)
		return err
	})
	g.Go(func() (err error) {
		stats.ApprovedApplications, err = s.apps.CountByStatus(gctx, domain.ApplicationApproved)
		return err
	})
	g.Go(func() (err error) {
		stats.RejectedApplications, err = s.apps.CountByStatus(gctx, domain.ApplicationRejected)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("application stats: %w", err)
	}
	return &stats, nil
}

// ArtistProfile returns the artist record owned by the caller.
func (s *ApplicationService) ArtistProfile(ctx context.Context, p domain.Principal) (*domain.Artist, error) {
	return s.artists.FindByUser(ctx, p.SubjectID)
}
