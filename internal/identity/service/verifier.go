package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"program-access/internal/identity/domain"
	sessiondomain "program-access/internal/session/domain"
)

// ErrInvalidSession is returned when the token is invalid or its session is missing, revoked, or expired.
var ErrInvalidSession = errors.New("invalid session")

// TokenValidator validates an access token and returns the session and user it was issued for.
type TokenValidator interface {
	ValidateAccess(token string) (sessionID, userID string, err error)
}

// SessionRepo is the minimal session repository needed by the verifier.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
}

// SessionVerifier exchanges a bearer token for the authenticated user.
// It is stateless and safe for concurrent use.
type SessionVerifier struct {
	tokens   TokenValidator
	sessions SessionRepo
	now      func() time.Time
}

// NewSessionVerifier returns a SessionVerifier backed by the given token validator and session repository.
func NewSessionVerifier(tokens TokenValidator, sessions SessionRepo) *SessionVerifier {
	return &SessionVerifier{tokens: tokens, sessions: sessions, now: time.Now}
}

// Verify validates token and confirms its session is live and owned by the token's subject.
// Returns ErrInvalidSession for any credential problem; repository failures are wrapped and returned as is.
func (v *SessionVerifier) Verify(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	sessionID, userID, err := v.tokens.ValidateAccess(token)
	if err != nil {
		return nil, ErrInvalidSession
	}
	sess, err := v.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !sess.IsValid(v.now()) || sess.UserID != userID {
		return nil, ErrInvalidSession
	}
	return &domain.User{ID: userID, SessionID: sessionID}, nil
}
