package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"docuscore-backend/internal/scoring"
)

// SQLRepo implements Repo on Postgres or SQLite. Feedback lists are stored as JSON text.
type SQLRepo struct {
	DB *sql.DB
}

const recordColumns = `document_id, session_id, run_id, tier, state, score, status, strengths, issues, suggestions, error_message, created_at, completed_at`

// Save upserts the record for its document.
func (r *SQLRepo) Save(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO analyses (
    document_id,
    session_id,
    run_id,
    tier,
    state,
    score,
    status,
    strengths,
    issues,
    suggestions,
    error_message,
    created_at,
    completed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (document_id) DO UPDATE SET
    session_id = excluded.session_id,
    run_id = excluded.run_id,
    tier = excluded.tier,
    state = excluded.state,
    score = excluded.score,
    status = excluded.status,
    strengths = excluded.strengths,
    issues = excluded.issues,
    suggestions = excluded.suggestions,
    error_message = excluded.error_message,
    created_at = excluded.created_at,
    completed_at = excluded.completed_at`

	cols, err := resultColumns(rec.Result)
	if err != nil {
		return err
	}
	var completedAt sql.NullInt64
	if rec.CompletedAt != nil {
		completedAt = sql.NullInt64{Int64: rec.CompletedAt.UnixNano(), Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		rec.DocumentID,
		rec.SessionID,
		rec.RunID,
		string(rec.Tier),
		rec.State,
		cols.score,
		cols.status,
		cols.strengths,
		cols.issues,
		cols.suggestions,
		nullString(rec.ErrorMessage),
		rec.CreatedAt.UnixNano(),
		completedAt,
	)
	return err
}

// Get returns the record for a document.
func (r *SQLRepo) Get(ctx context.Context, sessionID, documentID string) (Record, error) {
	query := `
SELECT ` + recordColumns + `
FROM analyses
WHERE session_id = $1 AND document_id = $2
LIMIT 1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, sessionID, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// Complete stores the result if runID is still the current run.
func (r *SQLRepo) Complete(ctx context.Context, sessionID, documentID, runID string, result scoring.Analysis, completedAt time.Time) error {
	const query = `
UPDATE analyses
SET state = $1, score = $2, status = $3, strengths = $4, issues = $5, suggestions = $6, error_message = NULL, completed_at = $7
WHERE session_id = $8 AND document_id = $9 AND run_id = $10`

	cols, err := resultColumns(&result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		StateCompleted,
		cols.score,
		cols.status,
		cols.strengths,
		cols.issues,
		cols.suggestions,
		completedAt.UnixNano(),
		sessionID,
		documentID,
		runID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Fail marks the current run as failed.
func (r *SQLRepo) Fail(ctx context.Context, sessionID, documentID, runID, message string, completedAt time.Time) error {
	const query = `
UPDATE analyses
SET state = $1, score = NULL, status = NULL, strengths = NULL, issues = NULL, suggestions = NULL, error_message = $2, completed_at = $3
WHERE session_id = $4 AND document_id = $5 AND run_id = $6`

	res, err := r.DB.ExecContext(ctx, query, StateFailed, message, completedAt.UnixNano(), sessionID, documentID, runID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListBySession returns every record owned by the session.
func (r *SQLRepo) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	query := `
SELECT ` + recordColumns + `
FROM analyses
WHERE session_id = $1`

	rows, err := r.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the record for a document. Missing records are not an error.
func (r *SQLRepo) Delete(ctx context.Context, sessionID, documentID string) error {
	const query = `DELETE FROM analyses WHERE session_id = $1 AND document_id = $2`
	_, err := r.DB.ExecContext(ctx, query, sessionID, documentID)
	return err
}

type storedResult struct {
	score       sql.NullInt64
	status      sql.NullString
	strengths   sql.NullString
	issues      sql.NullString
	suggestions sql.NullString
}

func resultColumns(result *scoring.Analysis) (storedResult, error) {
	var out storedResult
	if result == nil {
		return out, nil
	}
	out.score = sql.NullInt64{Int64: int64(result.Score), Valid: true}
	out.status = sql.NullString{String: string(result.Status), Valid: true}
	for _, pair := range []struct {
		dst  *sql.NullString
		list []string
	}{
		{&out.strengths, result.Strengths},
		{&out.issues, result.Issues},
		{&out.suggestions, result.Suggestions},
	} {
		if pair.list == nil {
			pair.list = []string{}
		}
		raw, err := json.Marshal(pair.list)
		if err != nil {
			return storedResult{}, fmt.Errorf("encode feedback: %w", err)
		}
		*pair.dst = sql.NullString{String: string(raw), Valid: true}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var tier string
	var cols storedResult
	var errorMessage sql.NullString
	var createdAt int64
	var completedAt sql.NullInt64
	if err := row.Scan(
		&rec.DocumentID,
		&rec.SessionID,
		&rec.RunID,
		&tier,
		&rec.State,
		&cols.score,
		&cols.status,
		&cols.strengths,
		&cols.issues,
		&cols.suggestions,
		&errorMessage,
		&createdAt,
		&completedAt,
	); err != nil {
		return Record{}, err
	}
	rec.Tier = scoring.Tier(tier)
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	if completedAt.Valid {
		t := time.Unix(0, completedAt.Int64).UTC()
		rec.CompletedAt = &t
	}
	if errorMessage.Valid {
		rec.ErrorMessage = errorMessage.String
	}
	if cols.score.Valid {
		result := scoring.Analysis{
			Score:  int(cols.score.Int64),
			Status: scoring.Status(cols.status.String),
		}
		var err error
		if result.Strengths, err = decodeList(cols.strengths); err != nil {
			return Record{}, err
		}
		if result.Issues, err = decodeList(cols.issues); err != nil {
			return Record{}, err
		}
		if result.Suggestions, err = decodeList(cols.suggestions); err != nil {
			return Record{}, err
		}
		rec.Result = &result
	}
	return rec, nil
}

func decodeList(raw sql.NullString) ([]string, error) {
	out := []string{}
	if !raw.Valid || raw.String == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStaleRun
	}
	return nil
}

var _ Repo = (*SQLRepo)(nil)
