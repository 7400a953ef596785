package answer

import "regexp"

var (
	emphasisMarks  = regexp.MustCompile(`\*{1,2}`)
	headingMarks   = regexp.MustCompile(`(?m)^#{1,6}[ \t]*`)
	excessNewlines = regexp.MustCompile(`\n{3,}`)
)

// CleanFormatting strips the markdown the models tend to emit despite
// instructions: emphasis and heading markers go, runs of three or more
// newlines collapse to two. Idempotent, so it is safe to run on already
// cleaned text.
func CleanFormatting(s string) string {
	s = emphasisMarks.ReplaceAllString(s, "")
	s = headingMarks.ReplaceAllString(s, "")
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	return s
}

// EstimatePage converts a character offset into an approximate 1-based
// page number, assuming charsPerPage characters per page (2800 by
// default). Documents are not paginated in storage, so this is a reading
// aid, not an authoritative page number.
func EstimatePage(offset, charsPerPage int) int {
	if charsPerPage <= 0 {
		charsPerPage = 2800
	}
	if offset < 0 {
		offset = 0
	}
	return offset/charsPerPage + 1
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
