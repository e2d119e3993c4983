package domain

// Principal is the identity derived from a verified token for one request.
// It is never persisted or cached.
type Principal struct {
	SubjectID string
	Role      Role
}
