package domain

// User is the identity tracked per username. Created on first registration
// and immutable thereafter.
type User struct {
	ID       string
	Username string
}

// Session is the opaque reconnect credential bound to a user. The ID doubles
// as the wire token, so it must come from a cryptographically random identity
// space. Sessions do not expire.
type Session struct {
	ID     string
	UserID string
}
