package domain

import "time"

// Session represents a user sign-in. Access tokens name the session they belong to.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time // nil when not revoked
	CreatedAt time.Time
}

// IsValid reports whether the session is unrevoked and unexpired at now.
func (s *Session) IsValid(now time.Time) bool {
	if s == nil || s.RevokedAt != nil {
		return false
	}
	return now.Before(s.ExpiresAt)
}
