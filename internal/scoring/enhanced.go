package scoring

// EnhancedScorer layers tone and vocabulary signals over the heuristic result.
// It holds no mutable state; concurrent calls on distinct inputs do not interfere.
type EnhancedScorer struct {
	base  *HeuristicScorer
	rules []Rule
}

// NewEnhancedScorer wraps base. A nil base gets a fresh HeuristicScorer.
func NewEnhancedScorer(base *HeuristicScorer) *EnhancedScorer {
	if base == nil {
		base = NewHeuristicScorer()
	}
	return &EnhancedScorer{base: base, rules: enhancedRules()}
}

// Tier reports the enhanced tier.
func (s *EnhancedScorer) Tier() Tier {
	return TierEnhanced
}

// Score runs the heuristic pass, then the extra rules on the same running total.
// Status is recomputed from the final score. The score is not capped at 100.
func (s *EnhancedScorer) Score(text string) Analysis {
	acc := newAccumulator(s.base.Score(text))
	in := NewInput(text)
	for _, rule := range s.rules {
		acc.Apply(rule.Check(in))
	}
	return acc.Analysis()
}

// ScoreAsync scores on a separate goroutine. The channel is buffered, so a caller that stops
// waiting simply drops the result and the goroutine still exits.
func (s *EnhancedScorer) ScoreAsync(text string) <-chan Analysis {
	out := make(chan Analysis, 1)
	go func() {
		out <- s.Score(text)
	}()
	return out
}
