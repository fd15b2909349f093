package scoring

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minLength          = 50
	repeatMinRunes     = 4
	repeatMaxCount     = 3
	richVocabularyMean = 5.0
)

// Feedback text, kept together so the presentation layer sees stable wording.
const (
	msgTooShort       = "Response too short: fewer than 50 characters"
	msgAdequateLength = "Adequate response length"
	msgPunctuation    = "Correct use of punctuation"
	msgNoPunctuation  = "Missing proper punctuation"
	msgStructure      = "Multiple sentences: good structure"
	msgConnectors     = "Uses connectors and quality words"
	msgRepetition     = "Excessive word repetition: "
	msgSpecific       = "Includes specific data or examples"
	msgAddExamples    = "Add concrete examples or specific data"
	msgReviewProblems = "Review the identified problems"
	msgDevelopFurther = "Develop the answer further with additional details"
	msgPositiveTone   = "Positive, constructive tone"
	msgRichVocabulary = "Rich and varied vocabulary"
)

var (
	connectorWords = []string{"porque", "debido", "por tanto", "sin embargo", "además", "finalmente"}
	positiveWords  = []string{"bueno", "excelente", "correcto", "adecuado", "óptimo"}
	negativeWords  = []string{"malo", "incorrecto", "inadecuado", "error", "problema"}

	examplePattern = regexp.MustCompile(`(?i)ejemplo|por ejemplo|como|tal como`)
)

// Input is the pre-digested form of a document shared by every rule.
type Input struct {
	Raw    string
	Lower  string
	Tokens []string
	Length int
}

// NewInput normalizes text once. Length counts characters, not bytes.
func NewInput(text string) Input {
	lower := strings.ToLower(text)
	return Input{
		Raw:    text,
		Lower:  lower,
		Tokens: strings.Fields(lower),
		Length: utf8.RuneCountInString(text),
	}
}

// Rule is one independent check.
type Rule struct {
	Name  string
	Check func(in Input) Outcome
}

func heuristicRules() []Rule {
	return []Rule{
		{Name: "length", Check: lengthRule},
		{Name: "punctuation", Check: punctuationRule},
		{Name: "sentences", Check: sentenceRule},
		{Name: "connectors", Check: connectorRule},
		{Name: "repetition", Check: repetitionRule},
		{Name: "specificity", Check: specificityRule},
	}
}

func enhancedRules() []Rule {
	return []Rule{
		{Name: "tone", Check: toneRule},
		{Name: "vocabulary", Check: vocabularyRule},
	}
}

// lengthRule leaves exactly minLength characters unrewarded and unflagged.
func lengthRule(in Input) Outcome {
	switch {
	case in.Length < minLength:
		return Outcome{Issue: msgTooShort}
	case in.Length > minLength:
		return Outcome{Points: 20, Strength: msgAdequateLength}
	default:
		return Outcome{}
	}
}

func punctuationRule(in Input) Outcome {
	if strings.ContainsAny(in.Raw, ".!?") {
		return Outcome{Points: 15, Strength: msgPunctuation}
	}
	return Outcome{Issue: msgNoPunctuation}
}

func sentenceRule(in Input) Outcome {
	if countSentences(in.Raw) >= 2 {
		return Outcome{Points: 15, Strength: msgStructure}
	}
	return Outcome{}
}

func countSentences(text string) int {
	segments := strings.FieldsFunc(text, isTerminator)
	n := 0
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func connectorRule(in Input) Outcome {
	if containsAny(in.Lower, connectorWords) {
		return Outcome{Points: 20, Strength: msgConnectors}
	}
	return Outcome{}
}

func repetitionRule(in Input) Outcome {
	repeated := repeatedTokens(in.Tokens)
	if len(repeated) > 0 {
		return Outcome{Issue: msgRepetition + strings.Join(repeated, ", ")}
	}
	return Outcome{Points: 10}
}

// repeatedTokens returns offending tokens in order of first appearance.
func repeatedTokens(tokens []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < repeatMinRunes {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}
	var out []string
	for _, tok := range order {
		if counts[tok] > repeatMaxCount {
			out = append(out, tok)
		}
	}
	return out
}

func specificityRule(in Input) Outcome {
	if strings.ContainsAny(in.Raw, "0123456789") || examplePattern.MatchString(in.Raw) {
		return Outcome{Points: 20, Strength: msgSpecific}
	}
	return Outcome{Suggestion: msgAddExamples}
}

func toneRule(in Input) Outcome {
	if containsAny(in.Lower, positiveWords) && !containsAny(in.Lower, negativeWords) {
		return Outcome{Points: 10, Strength: msgPositiveTone}
	}
	return Outcome{}
}

func vocabularyRule(in Input) Outcome {
	if meanTokenLength(in.Tokens) > richVocabularyMean {
		return Outcome{Points: 10, Strength: msgRichVocabulary}
	}
	return Outcome{}
}

// meanTokenLength is zero for an empty token list.
func meanTokenLength(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	total := 0
	for _, tok := range tokens {
		total += utf8.RuneCountInString(tok)
	}
	return float64(total) / float64(len(tokens))
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
