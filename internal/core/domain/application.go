package domain

import (
	"strings"
	"time"
)

// ApplicationStatus is the review state of an artist application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending: {ApplicationApproved, ApplicationRejected},
}

// CanTransitionTo reports whether a review may move s to next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ArtistApplication is a user's request to be promoted to RoleArtist.
type ArtistApplication struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	Email          string            `json:"email,omitempty"`
	StageName      string            `json:"stage_name"`
	Genres         []string          `json:"genres"`
	Bio            string            `json:"bio"`
	PortfolioLinks []string          `json:"portfolio_links"`
	Status         ApplicationStatus `json:"status"`
	ReviewedBy     string            `json:"reviewed_by,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Artist is created when an application is approved.
type Artist struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	StageName      string    `json:"stage_name"`
	Genres         []string  `json:"genres"`
	Bio            string    `json:"bio"`
	PortfolioLinks []string  `json:"portfolio_links"`
	CreatedAt      time.Time `json:"created_at"`
}

// SplitGenres splits a comma separated genre string. A value with no
// non-empty parts falls back to the trimmed input.
func SplitGenres(raw string) []string {
	genres := splitTrim(raw, ",")
	if len(genres) == 0 {
		if g := strings.TrimSpace(raw); g != "" {
			return []string{g}
		}
		return []string{}
	}
	return genres
}

// SplitLinks splits a newline separated list of portfolio links.
func SplitLinks(raw string) []string {
	return splitTrim(raw, "\n")
}

func splitTrim(raw, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ApplicationStats summarises accounts and applications for the admin dashboard.
type ApplicationStats struct {
	TotalUsers           int64 `json:"total_users"`
	TotalArtists         int64 `json:"total_artists"`
	PendingApplications  int64 `json:"pending_applications"`
	ApprovedApplications int64 `json:"approved_applications"`
	RejectedApplications int64 `json:"rejected_applications"`
}
