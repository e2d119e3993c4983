package ports

import (
	"context"

	"github.com/bandstand/onboarding-api/internal/core/domain"
)

// AuthRepository defines the persistence operations for credential records.
type AuthRepository interface {
	// Create inserts a user and returns it with its generated ID.
	// Returns domain.ErrUserExists when the email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns domain.ErrAccountNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) error
	// Count returns the number of users, optionally restricted to one role.
	Count(ctx context.Context, role *domain.Role) (int64, error)
}
