package scoring

// HeuristicScorer is the offline, rule-based scorer. It is stateless and safe for concurrent use.
type HeuristicScorer struct {
	rules []Rule
}

// NewHeuristicScorer constructs a HeuristicScorer with the fixed rubric.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{rules: heuristicRules()}
}

// Tier reports the local tier.
func (s *HeuristicScorer) Tier() Tier {
	return TierLocal
}

// Score evaluates every rule in order and returns the finished Analysis. It never fails.
func (s *HeuristicScorer) Score(text string) Analysis {
	in := NewInput(text)
	acc := &ScoreAccumulator{}
	for _, rule := range s.rules {
		acc.Apply(rule.Check(in))
	}
	if acc.HasIssues() {
		acc.Apply(Outcome{Suggestion: msgReviewProblems})
	}
	if acc.Score() < 50 {
		acc.Apply(Outcome{Suggestion: msgDevelopFurther})
	}
	return acc.Analysis()
}
