package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanFormatting(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips bold and italics",
			input: "The **overtime** rate is *1.5x* base pay.",
			want:  "The overtime rate is 1.5x base pay.",
		},
		{
			name:  "strips heading markers",
			input: "## Scheduling\nShifts start at 7am.",
			want:  "Scheduling\nShifts start at 7am.",
		},
		{
			name:  "collapses newline runs",
			input: "First paragraph.\n\n\n\nSecond paragraph.",
			want:  "First paragraph.\n\nSecond paragraph.",
		},
		{
			name:  "plain text untouched",
			input: "Nothing to clean here.",
			want:  "Nothing to clean here.",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanFormatting(tt.input))
		})
	}
}

func TestCleanFormattingIdempotent(t *testing.T) {
	input := "### Policy\n\n\n**Bold** and *italic* text.\n\n\n\nDone."
	once := CleanFormatting(input)
	assert.Equal(t, once, CleanFormatting(once))
}

func TestEstimatePage(t *testing.T) {
	tests := []struct {
		name         string
		offset       int
		charsPerPage int
		want         int
	}{
		{"start of document", 0, 2800, 1},
		{"just under one page", 2799, 2800, 1},
		{"start of second page", 2800, 2800, 2},
		{"deep offset", 14000, 2800, 6},
		{"zero chars per page uses default", 2800, 0, 2},
		{"negative offset clamps to page one", -5, 2800, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimatePage(tt.offset, tt.charsPerPage))
		})
	}
}

func TestEstimatePageMonotonic(t *testing.T) {
	prev := 0
	for offset := 0; offset <= 30000; offset += 700 {
		page := EstimatePage(offset, 2800)
		assert.GreaterOrEqual(t, page, prev)
		assert.GreaterOrEqual(t, page, 1)
		prev = page
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefghij", 5))
}
