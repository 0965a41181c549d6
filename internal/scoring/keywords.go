// Package scoring implements the heuristic answer scorer, the CV strength
// analyzer, the feedback tables and the embedding-based scoring path.
package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "have": {},
	"that": {}, "this": {}, "your": {}, "their": {}, "which": {}, "other": {},
	"about": {}, "more": {}, "been": {}, "also": {}, "are": {}, "was": {},
}

func isKeywordSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case ',', ';', '.', ':', '—', '-', '/', '(', ')':
		return true
	}
	return false
}

// ExtractKeywords returns the distinct lowercased tokens of text that are at
// least minLength runes long and are not stop words, in first-seen order.
func ExtractKeywords(text string, minLength int) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), isKeywordSeparator)
	keywords := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < minLength {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

// words splits text on whitespace after lowercasing it.
func words(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func lowerTrim(text string) string {
	return strings.TrimSpace(strings.ToLower(text))
}
