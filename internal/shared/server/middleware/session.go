package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docuscore-backend/internal/shared/server/respond"
)

const (
	sessionIDKey = "sessionId"

	// SessionHeader carries the anonymous session identity.
	SessionHeader = "X-Session-Id"

	maxSessionIDLength = 128
)

// Session resolves the anonymous session identity. A request without one is
// assigned a fresh ID, echoed back in the response header.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
		if len(sessionID) > maxSessionIDLength {
			respond.Error(c, http.StatusBadRequest, "invalid_session", "session id too long", nil)
			return
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		c.Set(sessionIDKey, sessionID)
		c.Writer.Header().Set(SessionHeader, sessionID)
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID set by the Session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
