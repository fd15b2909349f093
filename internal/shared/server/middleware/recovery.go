package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"docuscore-backend/internal/shared/metrics"
	"docuscore-backend/internal/shared/server/respond"
	"docuscore-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 error envelope. If the handler already
// started writing, the status line is left alone.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			metrics.IncPanic(c.FullPath())
			telemetry.Error("panic", map[string]any{
				"request_id":  RequestIDFromContext(c),
				"session_id":  SessionIDFromContext(c),
				"document_id": c.GetString("documentId"),
				"error":       rec,
				"stack":       string(debug.Stack()),
				"path":        c.Request.URL.Path,
				"method":      c.Request.Method,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected server error", nil)
		}()
		c.Next()
	}
}
