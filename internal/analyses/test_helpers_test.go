package analyses

import (
	"context"
	"testing"
	"time"

	"docuscore-backend/internal/connectivity"
	"docuscore-backend/internal/documents"
)

const (
	testSession = "session-1"

	fullMarksText = "Finalmente, el procedimiento documentado resulta excelente. " +
		"Consideramos, por ejemplo, 25 indicadores complementarios."
)

func newTestService(t *testing.T, online bool) (*Service, *MemoryRepo, *documents.MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	docs := documents.NewMemoryRepo()
	svc := NewService(repo, docs, connectivity.Static(online))
	t.Cleanup(svc.Wait)
	return svc, repo, docs
}

func seedDocument(t *testing.T, docs *documents.MemoryRepo, id, content string) documents.Document {
	t.Helper()
	doc := documents.Document{
		ID:        id,
		SessionID: testSession,
		FileName:  id + ".txt",
		MimeType:  "text/plain",
		SizeBytes: int64(len(content)),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := docs.Create(context.Background(), doc); err != nil {
		t.Fatalf("create doc: %v", err)
	}
	return doc
}
