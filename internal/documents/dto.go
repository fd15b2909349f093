package documents

import (
	"time"
	"unicode/utf8"
)

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID string           `json:"documentId"`
	FileName   string           `json:"fileName"`
	MimeType   string           `json:"mimeType"`
	SizeBytes  int64            `json:"sizeBytes"`
	Characters int              `json:"characters"`
	UploadedAt time.Time        `json:"uploadedAt"`
	Analysis   *AnalysisSummary `json:"analysis,omitempty"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		MimeType:   doc.MimeType,
		SizeBytes:  doc.SizeBytes,
		Characters: utf8.RuneCountInString(doc.Content),
		UploadedAt: doc.CreatedAt,
	}
}
