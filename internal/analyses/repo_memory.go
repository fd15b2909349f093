package analyses

import (
	"context"
	"sync"
	"time"

	"docuscore-backend/internal/scoring"
)

type recordKey struct {
	sessionID  string
	documentID string
}

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[recordKey]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[recordKey]Record),
	}
}

// Save stores the record, replacing any previous one for the document.
func (r *MemoryRepo) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[recordKey{rec.SessionID, rec.DocumentID}] = cloneRecord(rec)
	return nil
}

// Get returns the record for a document.
func (r *MemoryRepo) Get(ctx context.Context, sessionID, documentID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[recordKey{sessionID, documentID}]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

// Complete stores the result if runID is still the current run.
func (r *MemoryRepo) Complete(ctx context.Context, sessionID, documentID, runID string, result scoring.Analysis, completedAt time.Time) error {
	return r.finish(ctx, sessionID, documentID, runID, func(rec *Record) {
		res := result.Clone()
		rec.State = StateCompleted
		rec.Result = &res
		rec.ErrorMessage = ""
		rec.CompletedAt = &completedAt
	})
}

// Fail marks the current run as failed.
func (r *MemoryRepo) Fail(ctx context.Context, sessionID, documentID, runID, message string, completedAt time.Time) error {
	return r.finish(ctx, sessionID, documentID, runID, func(rec *Record) {
		rec.State = StateFailed
		rec.Result = nil
		rec.ErrorMessage = message
		rec.CompletedAt = &completedAt
	})
}

func (r *MemoryRepo) finish(ctx context.Context, sessionID, documentID, runID string, apply func(*Record)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recordKey{sessionID, documentID}
	rec, ok := r.data[key]
	if !ok {
		return ErrNotFound
	}
	if rec.RunID != runID {
		return ErrStaleRun
	}
	apply(&rec)
	r.data[key] = rec
	return nil
}

// ListBySession returns every record owned by the session, in no particular order.
func (r *MemoryRepo) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Record{}
	for key, rec := range r.data {
		if key.sessionID == sessionID {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

// Delete removes the record for a document. Missing records are not an error.
func (r *MemoryRepo) Delete(ctx context.Context, sessionID, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, recordKey{sessionID, documentID})
	return nil
}

func cloneRecord(rec Record) Record {
	if rec.Result != nil {
		res := rec.Result.Clone()
		rec.Result = &res
	}
	if rec.CompletedAt != nil {
		t := *rec.CompletedAt
		rec.CompletedAt = &t
	}
	return rec
}

var _ Repo = (*MemoryRepo)(nil)
