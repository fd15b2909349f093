package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"docuscore-backend/internal/extract"
	"docuscore-backend/internal/shared/storage/object"
	"docuscore-backend/internal/shared/telemetry"
	"docuscore-backend/internal/shared/util"
)

// AnalysisCleaner drops whatever analysis state hangs off a document.
type AnalysisCleaner interface {
	DeleteForDocument(ctx context.Context, sessionID, documentID string) error
}

// SummaryLookup returns analysis summaries keyed by document ID.
type SummaryLookup interface {
	Summaries(ctx context.Context, sessionID string, documentIDs []string) (map[string]AnalysisSummary, error)
}

// Service contains business logic for documents.
type Service struct {
	Store    object.ObjectStore
	Repo     DocumentsRepo
	Analyses AnalysisCleaner
	Now      func() time.Time
}

// Upload saves the file to object storage, decodes its text and records the document.
func (s *Service) Upload(ctx context.Context, sessionID, fileName string, r io.Reader) (Document, error) {
	fileName = strings.TrimSpace(fileName)
	if sessionID == "" || fileName == "" {
		return Document{}, ErrInvalidInput
	}
	if !extract.IsSupported(fileName) {
		return Document{}, fmt.Errorf("%w: unsupported file type %q", ErrInvalidInput, fileName)
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, sessionID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	content, err := extract.ExtractText(ctx, s.Store, storageKey, mimeType, fileName)
	if err != nil {
		s.removeObjects(ctx, storageKey)
		if errors.Is(err, extract.ErrUnreadable) || errors.Is(err, extract.ErrUnsupported) {
			return Document{}, fmt.Errorf("%w: %s", ErrUnreadable, fileName)
		}
		return Document{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		Content:    content,
		CreatedAt:  s.now(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		s.removeObjects(ctx, storageKey)
		return Document{}, err
	}

	telemetry.Info("document.uploaded", map[string]any{
		"session_id":  sessionID,
		"document_id": doc.ID,
		"mime_type":   mimeType,
		"size_bytes":  size,
	})
	return doc, nil
}

// Get returns a document owned by the session.
func (s *Service) Get(ctx context.Context, sessionID, documentID string) (Document, error) {
	if sessionID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, sessionID, documentID)
}

// List returns the session's documents, newest first.
func (s *Service) List(ctx context.Context, sessionID string, limit, offset int) ([]Document, error) {
	if sessionID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListBySession(ctx, sessionID, limit, offset)
}

// Delete removes the document, its analysis and its stored objects.
func (s *Service) Delete(ctx context.Context, sessionID, documentID string) error {
	doc, err := s.Get(ctx, sessionID, documentID)
	if err != nil {
		return err
	}
	if s.Analyses != nil {
		if err := s.Analyses.DeleteForDocument(ctx, sessionID, documentID); err != nil {
			return fmt.Errorf("delete analysis: %w", err)
		}
	}
	if err := s.Repo.Delete(ctx, sessionID, documentID); err != nil {
		return err
	}
	s.removeObjects(ctx, doc.StorageKey)
	return nil
}

func (s *Service) removeObjects(ctx context.Context, storageKey string) {
	if storageKey == "" || s.Store == nil {
		return
	}
	for _, key := range []string{storageKey, util.ExtractedKey(storageKey)} {
		if err := s.Store.Delete(ctx, key); err != nil {
			telemetry.Warn("document.object_delete_failed", map[string]any{
				"storage_key": key,
				"error":       err.Error(),
			})
		}
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
