package analyses

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"docuscore-backend/internal/documents"
	"docuscore-backend/internal/scoring"
	"docuscore-backend/internal/shared/server/middleware"
	"docuscore-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc  *Service
	poll *pollLimiter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, poll: newPollLimiter(pollLimitWindow, nil)}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/analyze", h.startAnalysis)
	rg.GET("/documents/:id/analysis", h.getAnalysis)
}

type analysisResponse struct {
	DocumentID  string            `json:"documentId"`
	Tier        scoring.Tier      `json:"tier"`
	State       string            `json:"state"`
	Result      *scoring.Analysis `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

func toResponse(rec Record) analysisResponse {
	resp := analysisResponse{
		DocumentID:  rec.DocumentID,
		Tier:        rec.Tier,
		State:       rec.State,
		Error:       rec.ErrorMessage,
		CreatedAt:   rec.CreatedAt,
		CompletedAt: rec.CompletedAt,
	}
	if rec.State == StateCompleted && rec.Result != nil {
		resp.Result = rec.Result
	}
	return resp
}

func (h *Handler) startAnalysis(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	rec, err := h.Svc.Start(ctx, sessionID, documentID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		}
		return
	}
	c.Set("tier", string(rec.Tier))

	status := http.StatusOK
	if rec.State == StateProcessing {
		status = http.StatusAccepted
		c.Set("stateTransition", "none->processing")
	}
	respond.JSON(c, status, toResponse(rec))
}

func (h *Handler) getAnalysis(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	rec, err := h.Svc.Get(c.Request.Context(), sessionID, documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	if rec.State != StateProcessing {
		h.poll.Forget(sessionID, documentID)
	} else if !h.poll.Allow(sessionID, documentID) {
		c.Header("Retry-After", strconv.Itoa(h.poll.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "poll_too_fast", "analysis still processing", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(rec))
}
