package scoring

import (
	"math"
	"regexp"
	"unicode/utf8"

	"interview-coach-backend/internal/domain"
)

// Each component contributes at most this many points; five components give 10.
const componentCap = 2.0

const (
	specificityWeight = 0.5
	alignmentWeight   = 0.3
	depthWeight       = 0.4
)

var (
	specificityPattern = regexp.MustCompile(`(?i)\b(example|specifically|for instance|such as|implemented|developed|created|built|designed)\b`)
	depthPattern       = regexp.MustCompile(`(?i)\b(because|reason|approach|solution|challenge|overcame|learned|improve|strategy)\b`)
	jobSpecSeparators  = regexp.MustCompile(`[\s,;.]+`)
)

// ScoreAnswer rates a single answer on a 0-10 scale from five additive
// heuristics. Every input, including empty strings, produces a score.
func ScoreAnswer(question, answer, jobSpec string, mode domain.PersonalityMode) domain.AnswerScore {
	answerWords := words(answer)

	breakdown := domain.AnswerBreakdown{
		Length:      lengthScore(len(answerWords)),
		Specificity: math.Min(float64(countMatches(specificityPattern, answer))*specificityWeight, componentCap),
		Alignment:   jobAlignmentScore(answerWords, jobSpec),
		Relevance:   relevanceScore(answerWords, question),
		Depth:       math.Min(float64(countMatches(depthPattern, answer))*depthWeight, componentCap),
	}

	sum := breakdown.Length + breakdown.Specificity + breakdown.Alignment + breakdown.Relevance + breakdown.Depth
	score := math.Min(math.Round(sum*10)/10, 10)

	return domain.AnswerScore{
		Question:    question,
		Score:       score,
		Feedback:    AnswerFeedback(score, mode),
		Personality: mode,
		WordCount:   len(answerWords),
		Breakdown:   breakdown,
	}
}

func lengthScore(wordCount int) float64 {
	switch {
	case wordCount > 150:
		return 2
	case wordCount > 80:
		return 1.5
	case wordCount > 30:
		return 0.5
	default:
		return 0
	}
}

func countMatches(re *regexp.Regexp, text string) int {
	return len(re.FindAllStringIndex(text, -1))
}

// longTokens keeps the tokens longer than four runes, duplicates included.
func longTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if utf8.RuneCountInString(t) > 4 {
			out = append(out, t)
		}
	}
	return out
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// countIn counts the words (with repetition) that appear in set.
func countIn(words []string, set map[string]struct{}) int {
	n := 0
	for _, w := range words {
		if _, ok := set[w]; ok {
			n++
		}
	}
	return n
}

func jobAlignmentScore(answerWords []string, jobSpec string) float64 {
	if jobSpec == "" {
		return 0
	}
	jobKeywords := toSet(longTokens(jobSpecSeparators.Split(lowerTrim(jobSpec), -1)))
	matches := countIn(answerWords, jobKeywords)
	return math.Min(float64(matches)*alignmentWeight, componentCap)
}

func relevanceScore(answerWords []string, question string) float64 {
	if len(answerWords) == 0 {
		return 0
	}
	questionKeywords := longTokens(words(question))
	relevant := float64(countIn(answerWords, toSet(questionKeywords)))
	total := float64(len(questionKeywords))
	switch {
	case relevant >= total*0.5:
		return 2
	case relevant >= total*0.3:
		return 1
	default:
		return 0
	}
}
