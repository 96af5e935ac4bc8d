package parser

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	withRe  = regexp.MustCompile(`(?i)\b(?:with|invite|attendees?|guests?):?\s+([^,.;]+)`)
	// Location runs up to the next clause boundary keyword or end of string.
	locationRe = regexp.MustCompile(`(?i)(?:\b(?:at|in|location:?)|@)\s+([^,.;]+?)(?:\s+(?:on|at|with|for|from|to)\b|$)`)
)

// entityInfo holds what EntityExtractor pulled out of the text remaining
// after date/time removal.
type entityInfo struct {
	location  string
	attendees []string
	withNotes []string
	title     string
}

// extractEntities derives location, attendees and the cleaned title from the
// residual text. Attendee emails are kept in order of first appearance and
// are intentionally not deduplicated. Non-email "with X" name phrases land in
// the description notes, not in attendees.
func extractEntities(residual string) entityInfo {
	e := entityInfo{attendees: []string{}}
	var consumed []span

	for _, m := range emailRe.FindAllStringIndex(residual, -1) {
		e.attendees = append(e.attendees, residual[m[0]:m[1]])
		consumed = append(consumed, span{m[0], m[1]})
	}

	// Only the first location match is used.
	if m := locationRe.FindStringSubmatchIndex(residual); m != nil {
		e.location = strings.TrimSpace(group(residual, m, 1))
		consumed = append(consumed, span{m[0], m[1]})
	}

	for _, m := range withRe.FindAllStringSubmatchIndex(residual, -1) {
		consumed = append(consumed, span{m[0], m[1]})
		names := strings.TrimSpace(group(residual, m, 1))
		if names == "" || containsString(e.attendees, names) {
			continue
		}
		e.withNotes = append(e.withNotes, "With: "+names)
	}

	e.title = cleanTitle(cutSpans(residual, consumed))
	return e
}

// cutSpans blanks the given byte ranges with spaces so word separation
// survives until the final whitespace collapse.
func cutSpans(text string, consumed []span) string {
	if len(consumed) == 0 {
		return text
	}
	out := []byte(text)
	for _, s := range consumed {
		for i := s.start; i < s.end && i < len(out); i++ {
			out[i] = ' '
		}
	}
	return string(out)
}

var (
	multiSpaceRe = regexp.MustCompile(`\s+`)
	edgePunctRe  = regexp.MustCompile(`^[,;:\s]+|[,;:\s]+$`)
)

// cleanTitle collapses whitespace, trims edge punctuation and capitalizes the
// first letter. An empty residue falls back to "Untitled Event".
func cleanTitle(text string) string {
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = edgePunctRe.ReplaceAllString(text, "")
	if text == "" {
		return "Untitled Event"
	}
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
