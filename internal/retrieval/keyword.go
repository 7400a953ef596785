package retrieval

import (
	"regexp"
	"strings"
)

const maxQueryTokens = 8

var nonWord = regexp.MustCompile(`\W+`)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "not": true,
	"you": true, "all": true, "can": true, "was": true, "has": true,
	"had": true, "but": true, "our": true, "out": true,
	"with": true, "this": true, "that": true, "from": true, "have": true,
	"what": true, "when": true, "where": true, "which": true, "how": true,
	"about": true, "does": true, "will": true, "there": true, "their": true,
}

// QueryTokens tokenizes a query for keyword matching: split on non-word
// runes, lowercase, drop stop words and anything 2 chars or shorter, cap
// at maxQueryTokens.
func QueryTokens(query string) []string {
	parts := nonWord.Split(strings.ToLower(query), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) <= 2 || stopWords[p] {
			continue
		}
		tokens = append(tokens, p)
		if len(tokens) == maxQueryTokens {
			break
		}
	}
	return tokens
}

// keywordScore is the fraction of distinct query tokens that appear as
// substrings of the chunk's lowercased content.
func keywordScore(tokens []string, content string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	matched := 0
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}
