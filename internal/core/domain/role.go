package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. The numeric values are the wire
// representation stored in MongoDB and carried in the token "role" claim.
type Role int

const (
	RoleAdmin  Role = 0
	RoleArtist Role = 1
	RoleUser   Role = 2
)

var roleNames = map[Role]string{
	RoleAdmin:  "admin",
	RoleArtist: "artist",
	RoleUser:   "user",
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Wire returns the integer stored for r.
func (r Role) Wire() int { return int(r) }

// RoleFromWire maps a stored or claimed integer back to a Role.
func RoleFromWire(v int) (Role, error) {
	r := Role(v)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownRole, v)
	}
	return r, nil
}

// ParseRole accepts the lower-case role name ("admin", "artist", "user").
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for r, n := range roleNames {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}
