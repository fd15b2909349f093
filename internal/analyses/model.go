package analyses

import (
	"time"

	"docuscore-backend/internal/scoring"
)

const (
	StateProcessing = "processing"
	StateCompleted  = "completed"
	StateFailed     = "failed"
)

// Record is the stored analysis for one document. A document holds at most one record;
// re-analyzing replaces it. RunID distinguishes successive runs so a late background
// result never overwrites a newer one.
type Record struct {
	DocumentID   string
	SessionID    string
	RunID        string
	Tier         scoring.Tier
	State        string
	Result       *scoring.Analysis
	ErrorMessage string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}
