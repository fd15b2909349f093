package scoring

// Outcome is what a single rule contributes. Empty strings mean no feedback of that kind.
type Outcome struct {
	Points     int
	Strength   string
	Issue      string
	Suggestion string
}

// ScoreAccumulator folds rule outcomes into an Analysis. The zero value is ready to use.
type ScoreAccumulator struct {
	score       int
	strengths   []string
	issues      []string
	suggestions []string
}

// newAccumulator seeds an accumulator from a finished Analysis so more rules can be layered on.
func newAccumulator(base Analysis) *ScoreAccumulator {
	base = base.Clone()
	return &ScoreAccumulator{
		score:       base.Score,
		strengths:   base.Strengths,
		issues:      base.Issues,
		suggestions: base.Suggestions,
	}
}

// Apply adds the outcome's points and appends any feedback in insertion order.
func (a *ScoreAccumulator) Apply(o Outcome) {
	a.score += o.Points
	if o.Strength != "" {
		a.strengths = append(a.strengths, o.Strength)
	}
	if o.Issue != "" {
		a.issues = append(a.issues, o.Issue)
	}
	if o.Suggestion != "" {
		a.suggestions = append(a.suggestions, o.Suggestion)
	}
}

// Score returns the running total.
func (a *ScoreAccumulator) Score() int {
	return a.score
}

// HasIssues reports whether any rule recorded an issue so far.
func (a *ScoreAccumulator) HasIssues() bool {
	return len(a.issues) > 0
}

// Analysis snapshots the accumulator. Status is derived from the score here and nowhere else.
func (a *ScoreAccumulator) Analysis() Analysis {
	return Analysis{
		Score:       a.score,
		Status:      StatusFor(a.score),
		Strengths:   cloneStrings(a.strengths),
		Issues:      cloneStrings(a.issues),
		Suggestions: cloneStrings(a.suggestions),
	}
}
