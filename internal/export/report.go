package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"docuscore-backend/internal/scoring"
)

// ErrUnsupportedFormat is returned for formats other than json and yaml.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format selects the report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml and yml, case-insensitively. Empty means def.
func ParseFormat(raw string, def Format) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		if def == "" {
			return FormatJSON, nil
		}
		return def, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// Ext is the file extension without the dot.
func (f Format) Ext() string {
	return string(f)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Report is the exported view of one analysis. Field names are part of the file format.
type Report struct {
	DocumentName string   `json:"document_name" yaml:"document_name"`
	GeneratedAt  string   `json:"generated_at" yaml:"generated_at"`
	Score        int      `json:"score" yaml:"score"`
	Status       string   `json:"status" yaml:"status"`
	Strengths    []string `json:"strengths" yaml:"strengths"`
	Issues       []string `json:"issues" yaml:"issues"`
	Suggestions  []string `json:"suggestions" yaml:"suggestions"`
}

// NewReport mirrors a into a Report. Nil feedback lists become empty lists.
func NewReport(documentName string, a scoring.Analysis, generatedAt time.Time) Report {
	a = a.Clone()
	return Report{
		DocumentName: documentName,
		GeneratedAt:  generatedAt.UTC().Format(time.RFC3339),
		Score:        a.Score,
		Status:       string(a.Status),
		Strengths:    a.Strengths,
		Issues:       a.Issues,
		Suggestions:  a.Suggestions,
	}
}

// Encode writes the report. JSON is indented by two spaces.
func Encode(w io.Writer, r Report, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}
