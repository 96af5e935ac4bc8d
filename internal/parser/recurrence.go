package parser

import (
	"regexp"

	"github.com/calinvite/calinvite/internal/models"
)

// Recurrence classification runs over the raw input text, not the residual,
// in a fixed priority order; the first pattern that matches wins.
var recurrencePatterns = []struct {
	re      *regexp.Regexp
	cadence string
}{
	{regexp.MustCompile(`(?i)\bevery\s+(?:day|daily)\b`), models.RecurDaily},
	{regexp.MustCompile(`(?i)\bevery\s+(?:week|weekly|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`), models.RecurWeekly},
	{regexp.MustCompile(`(?i)\bevery\s+(?:month|monthly)\b`), models.RecurMonthly},
	{regexp.MustCompile(`(?i)\bevery\s+(?:year|yearly|annual)\b`), models.RecurYearly},
	{regexp.MustCompile(`(?i)\bevery\s+(?:weekday|workday)s?\b`), models.RecurWeekdays},
}

func detectRecurrence(text string) string {
	for _, p := range recurrencePatterns {
		if p.re.MatchString(text) {
			return p.cadence
		}
	}
	return models.RecurNone
}
