package domain

// Actor is the authenticated identity attached to a request. It is resolved
// once by the auth middleware and passed explicitly through context; nothing
// downstream re-parses credentials.
type Actor struct {
	ID    string
	Email string
	Role  Role
}

// IsZero reports whether no identity was resolved (unauthenticated request).
func (a Actor) IsZero() bool {
	return a.ID == "" && a.Email == ""
}
