package scoring

// Status is the tri-level verdict derived from a score.
type Status string

const (
	StatusPoor Status = "poor"
	StatusFair Status = "fair"
	StatusGood Status = "good"
)

const (
	goodThreshold = 70
	fairThreshold = 40
)

// StatusFor maps a score to its verdict. It is the only way a Status is produced.
func StatusFor(score int) Status {
	switch {
	case score >= goodThreshold:
		return StatusGood
	case score >= fairThreshold:
		return StatusFair
	default:
		return StatusPoor
	}
}

// Analysis is the complete output of one scoring pass over one document.
type Analysis struct {
	Score       int      `json:"score"`
	Status      Status   `json:"status"`
	Strengths   []string `json:"strengths"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// Tier identifies which scorer produced an Analysis.
type Tier string

const (
	TierLocal    Tier = "local"
	TierEnhanced Tier = "enhanced"
)

// Clone returns a deep copy so callers can hand out results without sharing slices.
func (a Analysis) Clone() Analysis {
	a.Strengths = cloneStrings(a.Strengths)
	a.Issues = cloneStrings(a.Issues)
	a.Suggestions = cloneStrings(a.Suggestions)
	return a
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
