package documents

import "time"

// Document is an uploaded file owned by a session, with its decoded text.
type Document struct {
	ID         string
	SessionID  string
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	Content    string
	CreatedAt  time.Time
}

// AnalysisSummary is the slice of an analysis shown next to a document in listings.
type AnalysisSummary struct {
	State  string `json:"state"`
	Tier   string `json:"tier"`
	Score  *int   `json:"score,omitempty"`
	Status string `json:"status,omitempty"`
}
