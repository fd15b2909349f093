package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docuscore-backend/internal/connectivity"
	"docuscore-backend/internal/documents"
	"docuscore-backend/internal/scoring"
	"docuscore-backend/internal/shared/metrics"
	"docuscore-backend/internal/shared/telemetry"
)

// Service picks a scoring tier from the connectivity reading, runs it and keeps the
// resulting Analysis keyed by document.
type Service struct {
	Repo          Repo
	Docs          documents.DocumentsRepo
	Connectivity  connectivity.Provider
	Local         *scoring.HeuristicScorer
	Enhanced      *scoring.EnhancedScorer
	EnhancedDelay time.Duration
	Now           func() time.Time

	wg sync.WaitGroup
}

// NewService wires both scorers. repo and docs may be nil when only Analyze is used.
func NewService(repo Repo, docs documents.DocumentsRepo, provider connectivity.Provider) *Service {
	local := scoring.NewHeuristicScorer()
	return &Service{
		Repo:         repo,
		Docs:         docs,
		Connectivity: provider,
		Local:        local,
		Enhanced:     scoring.NewEnhancedScorer(local),
	}
}

// Choose returns the enhanced scorer when online and the heuristic scorer otherwise.
func (s *Service) Choose(ctx context.Context) scoring.Scorer {
	if s.Connectivity != nil && s.Connectivity.Online(ctx) {
		return s.enhanced()
	}
	return s.local()
}

// Analyze scores text without storing anything. The enhanced tier honors ctx cancellation.
func (s *Service) Analyze(ctx context.Context, text string) (scoring.Analysis, scoring.Tier, error) {
	scorer := s.Choose(ctx)
	if scorer.Tier() == scoring.TierLocal {
		return scorer.Score(text), scoring.TierLocal, nil
	}
	select {
	case result := <-s.enhanced().ScoreAsync(text):
		return result, scoring.TierEnhanced, nil
	case <-ctx.Done():
		return scoring.Analysis{}, scoring.TierEnhanced, ctx.Err()
	}
}

// Start analyzes a stored document. The local tier completes before Start returns.
// The enhanced tier returns a processing record and finishes in the background.
// A document whose analysis is still processing gets the in-flight record back.
func (s *Service) Start(ctx context.Context, sessionID, documentID string) (Record, error) {
	if sessionID == "" || documentID == "" {
		return Record{}, ErrInvalidInput
	}
	doc, err := s.Docs.GetByID(ctx, sessionID, documentID)
	if err != nil {
		return Record{}, err
	}

	existing, err := s.Repo.Get(ctx, sessionID, documentID)
	switch {
	case err == nil && existing.State == StateProcessing:
		return existing, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return Record{}, err
	}

	scorer := s.Choose(ctx)
	rec := Record{
		DocumentID: doc.ID,
		SessionID:  sessionID,
		RunID:      uuid.NewString(),
		Tier:       scorer.Tier(),
		State:      StateProcessing,
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Save(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("save analysis: %w", err)
	}
	metrics.IncAnalysisStarted(string(rec.Tier))
	s.logState(ctx, rec, StateProcessing, "none->processing", nil)

	if rec.Tier == scoring.TierLocal {
		startedAt := rec.CreatedAt
			// A newer run or a delete superseded this one; report whatever is current.
			// A newer run replaced this one; report whatever is current.
			if isGone(err) {
				return s.Repo.Get(ctx, sessionID, documentID)
			}
			s.failAnalysis(ctx, rec, err, startedAt)
			return Record{}, err
		}
		return s.Repo.Get(ctx, sessionID, documentID)
	}

	runCtx, cancel := detachRun(ctx, s.EnhancedDelay)
	s.wg.Add(1)
	go func() {
		defer cancel()
		s.completeAsync(runCtx, rec, doc.Content)
	}()
	return rec, nil
}

// Get returns the stored record for a document.
func (s *Service) Get(ctx context.Context, sessionID, documentID string) (Record, error) {
	if sessionID == "" || documentID == "" {
		return Record{}, ErrInvalidInput
	}
	return s.Repo.Get(ctx, sessionID, documentID)
}

// Result returns the last completed Analysis for a document.
func (s *Service) Result(ctx context.Context, sessionID, documentID string) (scoring.Analysis, error) {
	rec, err := s.Get(ctx, sessionID, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return scoring.Analysis{}, ErrNotAnalyzed
		}
		return scoring.Analysis{}, err
	}
	if rec.State != StateCompleted || rec.Result == nil {
		return scoring.Analysis{}, ErrNotAnalyzed
	}
	return rec.Result.Clone(), nil
}

// DeleteForDocument drops the stored analysis of a removed document.
func (s *Service) DeleteForDocument(ctx context.Context, sessionID, documentID string) error {
	return s.Repo.Delete(ctx, sessionID, documentID)
}

// Summaries returns listing summaries for the given documents.
func (s *Service) Summaries(ctx context.Context, sessionID string, documentIDs []string) (map[string]documents.AnalysisSummary, error) {
	records, err := s.Repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[string]documents.AnalysisSummary, len(records))
	for _, rec := range records {
		if _, ok := wanted[rec.DocumentID]; !ok {
			continue
		}
		summary := documents.AnalysisSummary{State: rec.State, Tier: string(rec.Tier)}
		if rec.State == StateCompleted && rec.Result != nil {
			score := rec.Result.Score
			summary.Score = &score
			summary.Status = string(rec.Result.Status)
		}
		out[rec.DocumentID] = summary
	}
	return out, nil
}

// Wait blocks until every background analysis has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) completeAsync(ctx context.Context, rec Record, text string) {
	defer s.wg.Done()
	startedAt := rec.CreatedAt
	defer func() {
		if r := recover(); r != nil {
			s.failAnalysis(ctx, rec, fmt.Errorf("panic: %v", r), startedAt)
		}
	}()

	if s.EnhancedDelay > 0 {
		timer := time.NewTimer(s.EnhancedDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			s.failAnalysis(ctx, rec, ctx.Err(), startedAt)
			return
		}
	}

	var result scoring.Analysis
	select {
	case result = <-s.enhanced().ScoreAsync(text):
	case <-ctx.Done():
		s.failAnalysis(ctx, rec, ctx.Err(), startedAt)
		return
	}

	if err := s.complete(ctx, rec, result, startedAt); err != nil && !isGone(err) {
		s.failAnalysis(ctx, rec, err, startedAt)
	}
}

func (s *Service) complete(ctx context.Context, rec Record, result scoring.Analysis, startedAt time.Time) error {
	completedAt := s.now()
	if err := s.Repo.Complete(ctx, rec.SessionID, rec.DocumentID, rec.RunID, result, completedAt); err != nil {
		if isGone(err) {
			telemetry.Info("analysis.discarded", map[string]any{
				"request_id":  requestIDFromContext(ctx),
				"session_id":  rec.SessionID,
				"document_id": rec.DocumentID,
				"tier":        string(rec.Tier),
			})
		}
		return fmt.Errorf("set analysis result failed: %w", err)
	}
	tier := string(rec.Tier)
	metrics.IncAnalysisCompleted(tier, string(result.Status), result.Score)
	metrics.ObserveAnalysisDurationMs(tier, durationMs(startedAt, completedAt))
	s.logState(ctx, rec, StateCompleted, "processing->completed", map[string]any{
		"score":       result.Score,
		"verdict":     string(result.Status),
		"duration_ms": durationMs(startedAt, completedAt),
	})
	return nil
}

func (s *Service) failAnalysis(ctx context.Context, rec Record, err error, startedAt time.Time) {
	msg := sanitizeError(err)
	completedAt := s.now()
	if updateErr := s.Repo.Fail(context.Background(), rec.SessionID, rec.DocumentID, rec.RunID, msg, completedAt); updateErr != nil && !isGone(updateErr) {
		telemetry.Error("analysis.fail_update", map[string]any{
			"document_id": rec.DocumentID,
			"error":       updateErr.Error(),
			"cause":       msg,
		})
	}
	tier := string(rec.Tier)
	metrics.IncAnalysisFailed(tier)
	metrics.ObserveAnalysisDurationMs(tier, durationMs(startedAt, completedAt))
	s.logState(ctx, rec, StateFailed, "processing->failed", map[string]any{
		"error":       msg,
		"duration_ms": durationMs(startedAt, completedAt),
	})
}

func (s *Service) logState(ctx context.Context, rec Record, state, transition string, extra map[string]any) {
	fields := map[string]any{
		"request_id":       requestIDFromContext(ctx),
		"session_id":       rec.SessionID,
		"document_id":      rec.DocumentID,
		"tier":             string(rec.Tier),
		"state":            state,
		"state_transition": transition,
	}
	for k, v := range extra {
		fields[k] = v
	}
	telemetry.Info("analysis.state", fields)
}

func (s *Service) local() *scoring.HeuristicScorer {
	if s.Local == nil {
		return scoring.NewHeuristicScorer()
	}
	return s.Local
}

func (s *Service) enhanced() *scoring.EnhancedScorer {
	if s.Enhanced == nil {
		return scoring.NewEnhancedScorer(s.local())
	}
	return s.Enhanced
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// isGone reports a run that was deleted or superseded while in flight.
func isGone(err error) bool {
	return errors.Is(err, ErrStaleRun) || errors.Is(err, ErrNotFound)
}

func durationMs(startedAt, completedAt time.Time) float64 {
	return float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
