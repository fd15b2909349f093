package analyses

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"docuscore-backend/internal/documents"
	"docuscore-backend/internal/scoring"
)

func TestStartLocalCompletesSynchronously(t *testing.T) {
	svc, _, docs := newTestService(t, false)
	seedDocument(t, docs, "doc-1", fullMarksText)

	rec, err := svc.Start(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rec.State != StateCompleted {
		t.Fatalf("expected completed, got %s", rec.State)
	}
	if rec.Tier != scoring.TierLocal {
		t.Fatalf("expected local tier, got %s", rec.Tier)
	}
	if rec.Result == nil || rec.Result.Score != 100 || rec.Result.Status != scoring.StatusGood {
		t.Fatalf("unexpected result: %+v", rec.Result)
	}
	if rec.CompletedAt == nil {
		t.Fatalf("expected completedAt")
	}
}

func TestStartEnhancedCompletesInBackground(t *testing.T) {
	svc, _, docs := newTestService(t, true)
	seedDocument(t, docs, "doc-1", fullMarksText)

	rec, err := svc.Start(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rec.State != StateProcessing || rec.Tier != scoring.TierEnhanced {
		t.Fatalf("expected processing enhanced record, got %s/%s", rec.State, rec.Tier)
	}

	svc.Wait()

	got, err := svc.Get(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != StateCompleted {
		t.Fatalf("expected completed, got %s (%s)", got.State, got.ErrorMessage)
	}
	if got.Result.Score != 120 {
		t.Fatalf("expected enhanced score 120, got %d", got.Result.Score)
	}
	if got.RunID != rec.RunID {
		t.Fatalf("run id changed: %s vs %s", got.RunID, rec.RunID)
	}
}

func TestStartReusesInFlightRun(t *testing.T) {
	svc, repo, docs := newTestService(t, true)
	seedDocument(t, docs, "doc-1", "texto")

	inFlight := Record{
		DocumentID: "doc-1",
		SessionID:  testSession,
		RunID:      "run-1",
		Tier:       scoring.TierEnhanced,
		State:      StateProcessing,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.Save(context.Background(), inFlight); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec, err := svc.Start(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rec.RunID != "run-1" {
		t.Fatalf("expected in-flight run reused, got %s", rec.RunID)
	}
}

func TestStartReplacesPreviousResult(t *testing.T) {
	svc, _, docs := newTestService(t, false)
	seedDocument(t, docs, "doc-1", "corto")

	first, err := svc.Start(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	second, err := svc.Start(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("Start again: %v", err)
	}
	if first.RunID == second.RunID {
		t.Fatalf("expected a new run")
	}
	if second.Result.Score != first.Result.Score {
		t.Fatalf("expected deterministic score, got %d vs %d", first.Result.Score, second.Result.Score)
	}
}

func TestStartUnknownDocument(t *testing.T) {
	svc, _, _ := newTestService(t, false)

	_, err := svc.Start(context.Background(), testSession, "missing")
	if !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected documents.ErrNotFound, got %v", err)
	}
	if _, err := svc.Start(context.Background(), "", "doc-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStartIsScopedToSession(t *testing.T) {
	svc, _, docs := newTestService(t, false)
	seedDocument(t, docs, "doc-1", "texto")

	if _, err := svc.Start(context.Background(), "other-session", "doc-1"); !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected other session to miss, got %v", err)
	}
}

type failingCompleteRepo struct {
	*MemoryRepo
}

func (r failingCompleteRepo) Complete(ctx context.Context, sessionID, documentID, runID string, result scoring.Analysis, completedAt time.Time) error {
	return errors.New("disk full\nretry later")
}

func TestEnhancedFailureMarksRecordFailed(t *testing.T) {
	svc, repo, docs := newTestService(t, true)
	svc.Repo = failingCompleteRepo{MemoryRepo: repo}
	seedDocument(t, docs, "doc-1", fullMarksText)

	if _, err := svc.Start(context.Background(), testSession, "doc-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	svc.Wait()

	rec, err := repo.Get(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.State != StateFailed {
		t.Fatalf("expected failed, got %s", rec.State)
	}
	if strings.Contains(rec.ErrorMessage, "\n") || !strings.Contains(rec.ErrorMessage, "disk full") {
		t.Fatalf("unexpected error message %q", rec.ErrorMessage)
	}
	if rec.Result != nil {
		t.Fatalf("failed record must not carry a result")
	}
}

// flakyCompleteRepo fails the first Complete and then recovers.
type flakyCompleteRepo struct {
	*MemoryRepo
	failed bool
}

func (r *flakyCompleteRepo) Complete(ctx context.Context, sessionID, documentID, runID string, result scoring.Analysis, completedAt time.Time) error {
	if !r.failed {
		r.failed = true
		return errors.New("db down")
	}
	return r.MemoryRepo.Complete(ctx, sessionID, documentID, runID, result, completedAt)
}

func TestLocalFailureMarksRecordFailedAndAllowsRetry(t *testing.T) {
	svc, repo, docs := newTestService(t, false)
	svc.Repo = &flakyCompleteRepo{MemoryRepo: repo}
	seedDocument(t, docs, "doc-1", fullMarksText)

	if _, err := svc.Start(context.Background(), testSession, "doc-1"); err == nil || !strings.Contains(err.Error(), "db down") {
		t.Fatalf("expected db down error, got %v", err)
	}
	rec, err := repo.Get(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.State != StateFailed || !strings.Contains(rec.ErrorMessage, "db down") {
		t.Fatalf("expected failed record, got %s %q", rec.State, rec.ErrorMessage)
	}

	retry, err := svc.Start(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("retry Start: %v", err)
	}
	if retry.State != StateCompleted || retry.Result == nil || retry.Result.Score != 100 {
		t.Fatalf("expected completed retry, got %s %+v", retry.State, retry.Result)
	}
}

// supersededRepo simulates a concurrent Start that replaces the run before
// this one completes.
type supersededRepo struct {
	*MemoryRepo
}

func (r supersededRepo) Complete(ctx context.Context, sessionID, documentID, runID string, result scoring.Analysis, completedAt time.Time) error {
	winner := Record{
		DocumentID: documentID,
		SessionID:  sessionID,
		RunID:      "other-run",
		Tier:       scoring.TierLocal,
		State:      StateProcessing,
		CreatedAt:  completedAt,
	}
	if err := r.MemoryRepo.Save(ctx, winner); err != nil {
		return err
	}
	if err := r.MemoryRepo.Complete(ctx, sessionID, documentID, "other-run", result, completedAt); err != nil {
		return err
	}
	return r.MemoryRepo.Complete(ctx, sessionID, documentID, runID, result, completedAt)
}

func TestLocalStartReturnsCurrentRecordWhenSuperseded(t *testing.T) {
	svc, repo, docs := newTestService(t, false)
	svc.Repo = supersededRepo{MemoryRepo: repo}
	seedDocument(t, docs, "doc-1", fullMarksText)

	rec, err := svc.Start(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rec.RunID != "other-run" || rec.State != StateCompleted || rec.Result == nil {
		t.Fatalf("expected the winning run, got %s %s", rec.RunID, rec.State)
	}
}

func TestDeleteDuringEnhancedRunDiscardsResult(t *testing.T) {
	svc, repo, docs := newTestService(t, true)
	svc.EnhancedDelay = 20 * time.Millisecond
	seedDocument(t, docs, "doc-1", fullMarksText)

	if _, err := svc.Start(context.Background(), testSession, "doc-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.DeleteForDocument(context.Background(), testSession, "doc-1"); err != nil {
		t.Fatalf("DeleteForDocument: %v", err)
	}
	svc.Wait()

	if _, err := repo.Get(context.Background(), testSession, "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected record to stay deleted, got %v", err)
	}
}

func TestResultRequiresCompletedAnalysis(t *testing.T) {
	svc, repo, docs := newTestService(t, false)
	seedDocument(t, docs, "doc-1", fullMarksText)

	if _, err := svc.Result(context.Background(), testSession, "doc-1"); !errors.Is(err, ErrNotAnalyzed) {
		t.Fatalf("expected ErrNotAnalyzed, got %v", err)
	}

	if err := repo.Save(context.Background(), Record{DocumentID: "doc-1", SessionID: testSession, RunID: "r", State: StateProcessing}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := svc.Result(context.Background(), testSession, "doc-1"); !errors.Is(err, ErrNotAnalyzed) {
		t.Fatalf("expected ErrNotAnalyzed while processing, got %v", err)
	}
	if err := repo.Delete(context.Background(), testSession, "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	rec, err := svc.Start(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	got, err := svc.Result(context.Background(), testSession, "doc-1")
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if got.Score != rec.Result.Score {
		t.Fatalf("result mismatch")
	}
	got.Strengths[0] = "mutated"
	again, _ := svc.Result(context.Background(), testSession, "doc-1")
	if again.Strengths[0] == "mutated" {
		t.Fatalf("Result must return a copy")
	}
}

func TestSummaries(t *testing.T) {
	svc, _, docs := newTestService(t, false)
	seedDocument(t, docs, "doc-1", fullMarksText)
	seedDocument(t, docs, "doc-2", "sin analizar")

	if _, err := svc.Start(context.Background(), testSession, "doc-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	summaries, err := svc.Summaries(context.Background(), testSession, []string{"doc-1", "doc-2"})
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(summaries))
	}
	s := summaries["doc-1"]
	if s.State != StateCompleted || s.Score == nil || *s.Score != 100 || s.Status != "good" || s.Tier != "local" {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestAnalyzeChoosesTier(t *testing.T) {
	offline, _, _ := newTestService(t, false)
	online, _, _ := newTestService(t, true)

	got, tier, err := offline.Analyze(context.Background(), fullMarksText)
	if err != nil || tier != scoring.TierLocal || got.Score != 100 {
		t.Fatalf("offline: score=%d tier=%s err=%v", got.Score, tier, err)
	}

	got, tier, err = online.Analyze(context.Background(), fullMarksText)
	if err != nil || tier != scoring.TierEnhanced || got.Score != 120 {
		t.Fatalf("online: score=%d tier=%s err=%v", got.Score, tier, err)
	}
}

func TestAnalyzeWithoutRepos(t *testing.T) {
	svc := &Service{}
	got, tier, err := svc.Analyze(context.Background(), "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if tier != scoring.TierLocal || got.Score != 10 || got.Status != scoring.StatusPoor {
		t.Fatalf("unexpected empty-text analysis: %+v", got)
	}
}

func TestSanitizeError(t *testing.T) {
	if got := sanitizeError(nil); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	long := errors.New(strings.Repeat("x", 600))
	if got := sanitizeError(long); len(got) != 500 {
		t.Fatalf("expected truncation to 500, got %d", len(got))
	}
}
