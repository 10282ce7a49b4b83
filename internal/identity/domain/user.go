package domain

// User is the authenticated caller resolved from a session token.
// It exists only for the duration of a request.
type User struct {
	ID        string
	SessionID string
}
