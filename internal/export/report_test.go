package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"docuscore-backend/internal/scoring"
)

var generated = time.Date(2026, time.May, 4, 12, 30, 0, 0, time.UTC)

func sampleAnalysis() scoring.Analysis {
	return scoring.NewHeuristicScorer().Score("Finalmente, el procedimiento documentado resulta excelente. " +
		"Consideramos, por ejemplo, 25 indicadores complementarios.")
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatYAML, "json": FormatJSON, " JSON ": FormatJSON, "yaml": FormatYAML, "yml": FormatYAML}
	for raw, want := range cases {
		got, err := ParseFormat(raw, FormatYAML)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	got, err := ParseFormat("", "")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, got)

	_, err = ParseFormat("xml", FormatJSON)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestReportMirrorsAnalysis(t *testing.T) {
	a := sampleAnalysis()
	r := NewReport("respuesta.txt", a, generated)

	assert.Equal(t, "respuesta.txt", r.DocumentName)
	assert.Equal(t, "2026-05-04T12:30:00Z", r.GeneratedAt)
	assert.Equal(t, a.Score, r.Score)
	assert.Equal(t, string(a.Status), r.Status)
	assert.Equal(t, a.Strengths, r.Strengths)
	assert.Equal(t, a.Issues, r.Issues)
	assert.Equal(t, a.Suggestions, r.Suggestions)
}

func TestReportDoesNotAliasAnalysis(t *testing.T) {
	a := sampleAnalysis()
	r := NewReport("x", a, generated)
	r.Strengths[0] = "changed"
	assert.NotEqual(t, "changed", a.Strengths[0])
}

func TestEncodeJSONFieldNames(t *testing.T) {
	r := NewReport("respuesta.txt", scoring.Analysis{Score: 30, Status: scoring.StatusPoor}, generated)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, r, FormatJSON))
	assert.Contains(t, buf.String(), "\n  \"document_name\": \"respuesta.txt\"")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{"document_name", "generated_at", "score", "status", "strengths", "issues", "suggestions"} {
		assert.Contains(t, decoded, key)
	}
	assert.Len(t, decoded, 7)
	assert.Equal(t, []any{}, decoded["issues"], "nil lists encode as []")
}

func TestEncodeYAMLFieldNames(t *testing.T) {
	a := sampleAnalysis()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, NewReport("respuesta.txt", a, generated), FormatYAML))

	var decoded Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, a.Score, decoded.Score)
	assert.Equal(t, a.Strengths, decoded.Strengths)
	assert.Contains(t, buf.String(), "document_name: respuesta.txt")
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, Report{}, Format("xml"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
