package extractor

import (
	"regexp"
	"strings"
)

var (
	// shortLineRE matches lines of one or two word characters, which are
	// typically page numbers or OCR noise.
	shortLineRE = regexp.MustCompile(`(?m)^\s*\w{1,2}\s*$`)

	// whitespaceRE collapses any whitespace run, including line breaks.
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// Normalize cleans extracted page text: noise lines are dropped, whitespace
// runs collapse to single spaces, and the result is trimmed. Normalize is
// idempotent.
func Normalize(text string) string {
	text = shortLineRE.ReplaceAllString(text, "")
	text = whitespaceRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
