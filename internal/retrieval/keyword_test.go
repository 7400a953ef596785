package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryTokens(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "lowercases and splits on punctuation",
			query: "What is the On-Call Policy?",
			want:  []string{"call", "policy"},
		},
		{
			name:  "drops stop words and short tokens",
			query: "how do I log my hours",
			want:  []string{"log", "hours"},
		},
		{
			name:  "caps at eight tokens",
			query: "alpha bravo charlie delta echo foxtrot golf hotel india juliet",
			want:  []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"},
		},
		{
			name:  "empty query",
			query: "",
			want:  []string{},
		},
		{
			name:  "only stop words",
			query: "what was the",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QueryTokens(tt.query))
		})
	}
}

func TestKeywordScore(t *testing.T) {
	tokens := []string{"overtime", "policy", "weekend"}

	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{
			name:    "all tokens present",
			content: "The weekend overtime policy applies to all caregivers.",
			want:    1,
		},
		{
			name:    "partial match",
			content: "Overtime must be approved in advance.",
			want:    1.0 / 3.0,
		},
		{
			name:    "case insensitive",
			content: "WEEKEND OVERTIME POLICY",
			want:    1,
		},
		{
			name:    "no match",
			content: "Unrelated scheduling notes.",
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, keywordScore(tokens, tt.content), 1e-9)
		})
	}
}

func TestKeywordScoreNoTokens(t *testing.T) {
	assert.Zero(t, keywordScore(nil, "anything at all"))
}
