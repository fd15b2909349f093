package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docuscore-backend/internal/documents"
	"docuscore-backend/internal/scoring"
	"docuscore-backend/internal/shared/metrics"
	"docuscore-backend/internal/shared/storage/object"
	"docuscore-backend/internal/shared/telemetry"
	"docuscore-backend/internal/shared/util"
)

// ResultSource yields the last completed Analysis of a document.
type ResultSource interface {
	Result(ctx context.Context, sessionID, documentID string) (scoring.Analysis, error)
}

// Export is one rendered report ready to download.
type Export struct {
	FileName    string
	ContentType string
	Body        []byte
	StorageKey  string
}

// Service renders reports and keeps a copy in the object store.
type Service struct {
	Results       ResultSource
	Docs          documents.DocumentsRepo
	Store         object.ObjectStore
	DefaultFormat Format
	Now           func() time.Time
}

// Export renders the report for a document's last analysis.
func (s *Service) Export(ctx context.Context, sessionID, documentID string, format Format) (Export, error) {
	if format == "" {
		format = s.DefaultFormat
	}
	if format == "" {
		format = FormatJSON
	}

	doc, err := s.Docs.GetByID(ctx, sessionID, documentID)
	if err != nil {
		return Export{}, err
	}
	analysis, err := s.Results.Result(ctx, sessionID, documentID)
	if err != nil {
		return Export{}, err
	}

	now := s.now()
	var buf bytes.Buffer
	if err := Encode(&buf, NewReport(doc.FileName, analysis, now), format); err != nil {
		return Export{}, fmt.Errorf("encode report: %w", err)
	}

	out := Export{
		FileName:    util.ExportFileName(doc.FileName, now.UnixMilli(), format.Ext()),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}

	if s.Store != nil {
		key := util.ExportKey(sessionID, out.FileName)
		if _, err := s.Store.SaveWithKey(ctx, key, out.ContentType, bytes.NewReader(out.Body)); err != nil {
			telemetry.Warn("export.store_failed", map[string]any{
				"session_id":  sessionID,
				"document_id": documentID,
				"error":       err.Error(),
			})
		} else {
			out.StorageKey = key
		}
	}

	metrics.IncExport(string(format))
	return out, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// WriteFile renders a report straight to dir. It returns the written path.
func WriteFile(dir, documentName string, a scoring.Analysis, format Format, now time.Time) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, NewReport(documentName, a, now), format); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	target := filepath.Join(dir, util.ExportFileName(filepath.Base(documentName), now.UnixMilli(), format.Ext()))
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	metrics.IncExport(string(format))
	return target, nil
}
