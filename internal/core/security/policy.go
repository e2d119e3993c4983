package security

import (
	"github.com/bandstand/onboarding-api/internal/core/domain"
)

// Policy is a fixed set of roles allowed to reach an endpoint.
type Policy struct {
	name    string
	allowed map[domain.Role]struct{}
}

// NewPolicy builds a named policy admitting roles.
func NewPolicy(name string, roles ...domain.Role) Policy {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return Policy{name: name, allowed: allowed}
}

var (
	AdminOnly     = NewPolicy("admin_only", domain.RoleAdmin)
	ArtistOnly    = NewPolicy("artist_only", domain.RoleArtist)
	UserOnly      = NewPolicy("user_only", domain.RoleUser)
	AdminOrArtist = NewPolicy("admin_or_artist", domain.RoleAdmin, domain.RoleArtist)
	// AnyRole admits every authenticated principal.
	AnyRole = NewPolicy("any_role", domain.RoleAdmin, domain.RoleArtist, domain.RoleUser)
)

func (p Policy) Name() string { return p.name }

// Allows reports whether r is in the policy's role set.
func (p Policy) Allows(r domain.Role) bool {
	_, ok := p.allowed[r]
	return ok
}

// Authorize passes principal through when its role is allowed and fails
// with domain.ErrForbidden otherwise.
func (p Policy) Authorize(principal domain.Principal) (domain.Principal, error) {
	if !p.Allows(principal.Role) {
		return domain.Principal{}, domain.ErrForbidden
	}
	return principal, nil
}
