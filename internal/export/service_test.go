package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuscore-backend/internal/analyses"
	"docuscore-backend/internal/connectivity"
	"docuscore-backend/internal/documents"
	"docuscore-backend/internal/shared/storage/object/local"
)

func newExportFixture(t *testing.T) (*Service, *analyses.Service, *documents.MemoryRepo) {
	t.Helper()
	docs := documents.NewMemoryRepo()
	analysisSvc := analyses.NewService(analyses.NewMemoryRepo(), docs, connectivity.Static(false))
	svc := &Service{
		Results: analysisSvc,
		Docs:    docs,
		Store:   local.New(t.TempDir()),
		Now:     func() time.Time { return generated },
	}
	require.NoError(t, docs.Create(context.Background(), documents.Document{
		ID:        "doc-1",
		SessionID: "session-1",
		FileName:  "respuesta.txt",
		Content:   "Texto breve.",
		CreatedAt: generated,
	}))
	return svc, analysisSvc, docs
}

func TestExportRequiresAnalysis(t *testing.T) {
	svc, _, _ := newExportFixture(t)

	_, err := svc.Export(context.Background(), "session-1", "doc-1", FormatJSON)
	assert.True(t, errors.Is(err, analyses.ErrNotAnalyzed), "got %v", err)

	_, err = svc.Export(context.Background(), "session-1", "missing", FormatJSON)
	assert.True(t, errors.Is(err, documents.ErrNotFound), "got %v", err)
}

func TestExportRendersAndStoresCopy(t *testing.T) {
	svc, analysisSvc, _ := newExportFixture(t)
	rec, err := analysisSvc.Start(context.Background(), "session-1", "doc-1")
	require.NoError(t, err)

	out, err := svc.Export(context.Background(), "session-1", "doc-1", FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "analisis_respuesta.txt_"+strconv.FormatInt(generated.UnixMilli(), 10)+".yaml", out.FileName)
	assert.Equal(t, "application/yaml", out.ContentType)
	assert.Contains(t, string(out.Body), "score: "+strconv.Itoa(rec.Result.Score))
	require.NotEmpty(t, out.StorageKey)
	assert.True(t, strings.HasPrefix(out.StorageKey, "exports/"))

	rc, err := svc.Store.Open(context.Background(), out.StorageKey)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, out.Body, stored)
}

func TestExportUsesDefaultFormat(t *testing.T) {
	svc, analysisSvc, _ := newExportFixture(t)
	svc.DefaultFormat = FormatYAML
	_, err := analysisSvc.Start(context.Background(), "session-1", "doc-1")
	require.NoError(t, err)

	out, err := svc.Export(context.Background(), "session-1", "doc-1", "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.FileName, ".yaml"))
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := WriteFile(dir, "notas/respuesta.md", sampleAnalysis(), FormatJSON, generated)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "analisis_respuesta.md_"+strconv.FormatInt(generated.UnixMilli(), 10)+".json"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"document_name\": \"notas/respuesta.md\"")
}
