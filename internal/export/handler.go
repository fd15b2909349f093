package export

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuscore-backend/internal/analyses"
	"docuscore-backend/internal/documents"
	"docuscore-backend/internal/shared/server/middleware"
	"docuscore-backend/internal/shared/server/respond"
)

// Handler serves report downloads.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the export route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:id/export", h.export)
}

func (h *Handler) export(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	format, err := ParseFormat(c.Query("format"), h.Svc.DefaultFormat)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be json or yaml", nil)
		return
	}

	out, err := h.Svc.Export(c.Request.Context(), sessionID, documentID, format)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, analyses.ErrNotAnalyzed):
			respond.Error(c, http.StatusConflict, "not_analyzed", "document has not been analyzed yet", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to export analysis", nil)
		}
		return
	}

	respond.Attachment(c, out.FileName, out.ContentType, out.Body)
}
