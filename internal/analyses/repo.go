package analyses

import (
	"context"
	"time"

	"docuscore-backend/internal/scoring"
)

// Repo defines persistence operations for analyses, keyed by session and document.
type Repo interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, sessionID, documentID string) (Record, error)
	Complete(ctx context.Context, sessionID, documentID, runID string, result scoring.Analysis, completedAt time.Time) error
	Fail(ctx context.Context, sessionID, documentID, runID, message string, completedAt time.Time) error
	ListBySession(ctx context.Context, sessionID string) ([]Record, error)
	Delete(ctx context.Context, sessionID, documentID string) error
}
