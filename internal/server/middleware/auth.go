package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"program-access/internal/identity/domain"
	"program-access/internal/identity/service"
	"program-access/internal/programaccess"
)

const bearerPrefix = "bearer "

// Verifier resolves a bearer token to the authenticated user.
type Verifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// Auth returns a gin middleware that requires a Bearer token and a live session.
// A missing token aborts with 401 "Missing token"; any verification failure aborts with 401 "Invalid session".
// On success user_id and session_id are set in the request context.
func Auth(v Verifier, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			abortWithMessage(c, http.StatusUnauthorized, programaccess.MsgMissingToken)
			return
		}

		ctx := c.Request.Context()
		user, err := v.Verify(ctx, token)
		if err != nil || user == nil {
			if err != nil && !errors.Is(err, service.ErrInvalidSession) {
				log.WarnContext(ctx, "session verification failed",
					"request_id", GetRequestID(ctx),
					"error", err,
				)
			}
			abortWithMessage(c, http.StatusUnauthorized, programaccess.MsgInvalidSession)
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(ctx, user.ID, user.SessionID))
		c.Next()
	}
}

// extractBearer returns the token from an Authorization header value, or "" if missing or not a Bearer credential.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

func abortWithMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
