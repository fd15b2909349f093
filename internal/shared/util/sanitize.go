package util

import (
	"errors"
	"fmt"
	"strings"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// ExportFileName builds the download name for an exported report.
func ExportFileName(documentName string, unixMillis int64, ext string) string {
	safe, err := SanitizeFileName(documentName)
	if err != nil {
		safe = "document"
	}
	return fmt.Sprintf("analisis_%s_%d.%s", safe, unixMillis, ext)
}
