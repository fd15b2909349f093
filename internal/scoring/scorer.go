package scoring

// Scorer is implemented by both tiers.
type Scorer interface {
	Score(text string) Analysis
	Tier() Tier
}

var (
	_ Scorer = (*HeuristicScorer)(nil)
	_ Scorer = (*EnhancedScorer)(nil)
)
