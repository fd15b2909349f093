package documents

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docuscore-backend/internal/shared/server/middleware"
	"docuscore-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc       *Service
	Summaries SummaryLookup
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, summaries SummaryLookup) *Handler {
	return &Handler{Svc: svc, Summaries: summaries}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	if err := c.Request.ParseMultipartForm(maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "upload exceeds 10MB", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form required", nil)
		return
	}
	files := c.Request.MultipartForm.File["file"]
	if len(files) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	out := make([]DocumentResponse, 0, len(files))
	for _, fileHeader := range files {
		doc, err := h.uploadOne(c, sessionID, fileHeader)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), gin.H{"fileName": fileHeader.Filename})
			case errors.Is(err, ErrUnreadable):
				respond.Error(c, http.StatusUnprocessableEntity, "unreadable_document", "could not read document text", gin.H{"fileName": fileHeader.Filename})
			default:
				respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
			}
			return
		}
		out = append(out, toResponse(doc))
	}

	respond.JSON(c, http.StatusCreated, out)
}

func (h *Handler) uploadOne(c *gin.Context, sessionID string, fileHeader *multipart.FileHeader) (Document, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return Document{}, ErrInvalidInput
	}
	defer file.Close()
	return h.Svc.Upload(c.Request.Context(), sessionID, fileHeader.Filename, file)
}

func (h *Handler) get(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	doc, err := h.Svc.Get(c.Request.Context(), sessionID, documentID)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}

	resp := toResponse(doc)
	if h.Summaries != nil {
		summaries, err := h.Summaries.Summaries(c.Request.Context(), sessionID, []string{doc.ID})
		if err == nil {
			if s, ok := summaries[doc.ID]; ok {
				resp.Analysis = &s
			}
		}
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) delete(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	if err := h.Svc.Delete(c.Request.Context(), sessionID, documentID); err != nil {
		h.writeLookupError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) list(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	docs, err := h.Svc.List(c.Request.Context(), sessionID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		}
		return
	}

	var summaries map[string]AnalysisSummary
	if h.Summaries != nil && len(docs) > 0 {
		ids := make([]string, 0, len(docs))
		for _, doc := range docs {
			ids = append(ids, doc.ID)
		}
		summaries, err = h.Summaries.Summaries(c.Request.Context(), sessionID, ids)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load analyses", nil)
			return
		}
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		item := toResponse(doc)
		if s, ok := summaries[doc.ID]; ok {
			item.Analysis = &s
		}
		resp = append(resp, item)
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) writeLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
	}
}
