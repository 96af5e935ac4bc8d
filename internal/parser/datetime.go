package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// span marks a half-open byte range of the input consumed by a matcher so the
// title cleanup can subtract it later instead of mutating the text in place.
type span struct{ start, end int }

type clockTime struct{ hour, minute int }

// dateTimeInfo is the outcome of the date/time extraction pass. Date
// certainty and hour certainty are tracked independently: a bare "tomorrow"
// knows the date but not the hour, "at 2pm" alone knows the hour and implies
// the reference date.
type dateTimeInfo struct {
	date      time.Time
	dateKnown bool
	hourKnown bool
	start     clockTime
	end       clockTime
	endKnown  bool
	consumed  []span
}

var (
	// Ranges are tried before single times so "from 2pm to 4pm" is consumed
	// whole instead of as two competing matches.
	timeRangeMeridiemRe = regexp.MustCompile(`(?i)\b(?:from\s+|at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*(?:-|to|until|till)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	timeRange24Re       = regexp.MustCompile(`(?i)\b(?:from\s+|at\s+)?(\d{1,2}):(\d{2})\s*(?:-|to|until|till)\s*(\d{1,2}):(\d{2})\b`)

	clockTimeRe    = regexp.MustCompile(`(?i)\b(?:at\s+)?(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	hourMeridiemRe = regexp.MustCompile(`(?i)\b(?:at\s+)?(\d{1,2})\s*(am|pm)\b`)
	atHourRe       = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})\b`)
	namedHourRe    = regexp.MustCompile(`(?i)\b(?:at\s+)?(noon|midnight)\b`)

	dayAfterTomorrowRe = regexp.MustCompile(`(?i)\b(?:the\s+)?day\s+after\s+tomorrow\b`)
	tomorrowRe         = regexp.MustCompile(`(?i)\btomorrow\b`)
	todayRe            = regexp.MustCompile(`(?i)\b(?:today|tonight)\b`)
	inNUnitsRe         = regexp.MustCompile(`(?i)\bin\s+(\d+)\s+(day|days|week|weeks)\b`)
	nextPeriodRe       = regexp.MustCompile(`(?i)\bnext\s+(week|month|year)\b`)
	isoDateRe          = regexp.MustCompile(`(?i)\b(?:on\s+)?(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDateRe        = regexp.MustCompile(`(?i)\b(?:on\s+)?(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	monthDayRe         = regexp.MustCompile(`(?i)\b(?:on\s+)?(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	dayMonthRe         = regexp.MustCompile(`(?i)\b(?:on\s+)?(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)\b`)
	weekdayRe          = regexp.MustCompile(`(?i)\b(?:on\s+)?(?:(this|next)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var weekdaysByName = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// extractDateTime scans text for at most one time expression and one date
// expression, resolved forward from ref. Relative phrases never resolve to a
// date before ref.
func extractDateTime(text string, ref time.Time) dateTimeInfo {
	var info dateTimeInfo

	extractTime(text, &info)
	extractDate(text, ref, &info)

	// A clock time with no date expression implies the reference date.
	if info.hourKnown && !info.dateKnown {
		info.date = truncateToDay(ref)
		info.dateKnown = true
	}

	// Default duration is one hour when a start is certain but no end was
	// stated. An explicit end span always wins over this default.
	if info.hourKnown && !info.endKnown {
		total := (info.start.hour*60 + info.start.minute + 60) % (24 * 60)
		info.end = clockTime{hour: total / 60, minute: total % 60}
	}

	return info
}

func extractTime(text string, info *dateTimeInfo) {
	if m := timeRangeMeridiemRe.FindStringSubmatchIndex(text); m != nil {
		sh, sm := atoiGroup(text, m, 1), atoiGroup(text, m, 2)
		eh, em := atoiGroup(text, m, 4), atoiGroup(text, m, 5)
		smer, emer := group(text, m, 3), group(text, m, 6)
		if validClock(sh, sm, smer) && validClock(eh, em, emer) {
			end := clockTime{resolveHour(eh, emer), em}
			start := clockTime{resolveHour(sh, smer), sm}
			// "from 2 to 4pm": a bare start inherits the end's meridiem
			// unless that would put it after the end.
			if smer == "" && emer != "" {
				if cand := resolveHour(sh, emer); cand*60+sm <= end.hour*60+end.minute {
					start.hour = cand
				}
			}
			info.start, info.end = start, end
			info.hourKnown, info.endKnown = true, true
			info.consumed = append(info.consumed, span{m[0], m[1]})
			return
		}
	}
	if m := timeRange24Re.FindStringSubmatchIndex(text); m != nil {
		sh, sm := atoiGroup(text, m, 1), atoiGroup(text, m, 2)
		eh, em := atoiGroup(text, m, 3), atoiGroup(text, m, 4)
		if validClock(sh, sm, "") && validClock(eh, em, "") {
			info.start = clockTime{sh, sm}
			info.end = clockTime{eh, em}
			info.hourKnown, info.endKnown = true, true
			info.consumed = append(info.consumed, span{m[0], m[1]})
			return
		}
	}
	if m := clockTimeRe.FindStringSubmatchIndex(text); m != nil {
		h, min, mer := atoiGroup(text, m, 1), atoiGroup(text, m, 2), group(text, m, 3)
		if validClock(h, min, mer) {
			info.start = clockTime{resolveHour(h, mer), min}
			info.hourKnown = true
			info.consumed = append(info.consumed, span{m[0], m[1]})
			return
		}
	}
	if m := hourMeridiemRe.FindStringSubmatchIndex(text); m != nil {
		h, mer := atoiGroup(text, m, 1), group(text, m, 2)
		if validClock(h, 0, mer) {
			info.start = clockTime{resolveHour(h, mer), 0}
			info.hourKnown = true
			info.consumed = append(info.consumed, span{m[0], m[1]})
			return
		}
	}
	if m := namedHourRe.FindStringSubmatchIndex(text); m != nil {
		h := 12
		if strings.EqualFold(group(text, m, 1), "midnight") {
			h = 0
		}
		info.start = clockTime{h, 0}
		info.hourKnown = true
		info.consumed = append(info.consumed, span{m[0], m[1]})
		return
	}
	if m := atHourRe.FindStringSubmatchIndex(text); m != nil {
		h := atoiGroup(text, m, 1)
		if h <= 23 {
			info.start = clockTime{h, 0}
			info.hourKnown = true
			info.consumed = append(info.consumed, span{m[0], m[1]})
		}
	}
}

func extractDate(text string, ref time.Time, info *dateTimeInfo) {
	today := truncateToDay(ref)

	if m := dayAfterTomorrowRe.FindStringIndex(text); m != nil {
		setDate(info, today.AddDate(0, 0, 2), m)
		return
	}
	if m := tomorrowRe.FindStringIndex(text); m != nil {
		setDate(info, today.AddDate(0, 0, 1), m)
		return
	}
	if m := todayRe.FindStringIndex(text); m != nil {
		setDate(info, today, m)
		return
	}
	if m := inNUnitsRe.FindStringSubmatchIndex(text); m != nil {
		n := atoiGroup(text, m, 1)
		if strings.HasPrefix(strings.ToLower(group(text, m, 2)), "week") {
			n *= 7
		}
		setDate(info, today.AddDate(0, 0, n), m[:2])
		return
	}
	if m := nextPeriodRe.FindStringSubmatchIndex(text); m != nil {
		switch strings.ToLower(group(text, m, 1)) {
		case "week":
			setDate(info, today.AddDate(0, 0, 7), m[:2])
		case "month":
			setDate(info, today.AddDate(0, 1, 0), m[:2])
		case "year":
			setDate(info, today.AddDate(1, 0, 0), m[:2])
		}
		return
	}
	if m := isoDateRe.FindStringSubmatchIndex(text); m != nil {
		y, mo, d := atoiGroup(text, m, 1), atoiGroup(text, m, 2), atoiGroup(text, m, 3)
		if dt, ok := makeDate(y, mo, d); ok {
			setDate(info, dt, m[:2])
		}
		return
	}
	if m := slashDateRe.FindStringSubmatchIndex(text); m != nil {
		mo, d, y := atoiGroup(text, m, 1), atoiGroup(text, m, 2), atoiGroup(text, m, 3)
		if group(text, m, 3) == "" {
			y = 0
		} else if y < 100 {
			y += 2000
		}
		if dt, ok := makeForwardDate(y, mo, d, today); ok {
			setDate(info, dt, m[:2])
		}
		return
	}
	if m := monthDayRe.FindStringSubmatchIndex(text); m != nil {
		mo := monthsByName[strings.ToLower(group(text, m, 1))]
		d, y := atoiGroup(text, m, 2), atoiGroup(text, m, 3)
		if dt, ok := makeForwardDate(y, int(mo), d, today); ok {
			setDate(info, dt, m[:2])
		}
		return
	}
	if m := dayMonthRe.FindStringSubmatchIndex(text); m != nil {
		d := atoiGroup(text, m, 1)
		mo := monthsByName[strings.ToLower(group(text, m, 2))]
		if dt, ok := makeForwardDate(0, int(mo), d, today); ok {
			setDate(info, dt, m[:2])
		}
		return
	}
	if m := weekdayRe.FindStringSubmatchIndex(text); m != nil {
		qualifier := strings.ToLower(group(text, m, 1))
		target := weekdaysByName[strings.ToLower(group(text, m, 2))]
		delta := (int(target) - int(today.Weekday()) + 7) % 7
		// Forward bias: "next <day>" on the same weekday means a week out,
		// a bare weekday keeps today when it matches exactly.
		if delta == 0 && qualifier == "next" {
			delta = 7
		}
		setDate(info, today.AddDate(0, 0, delta), m[:2])
	}
}

func setDate(info *dateTimeInfo, date time.Time, match []int) {
	info.date = date
	info.dateKnown = true
	info.consumed = append(info.consumed, span{match[0], match[1]})
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func makeDate(y, mo, d int) (time.Time, bool) {
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	dt := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	// Normalized out-of-range days (e.g. Feb 30) roll over; reject those.
	if int(dt.Month()) != mo || dt.Day() != d {
		return time.Time{}, false
	}
	return dt, true
}

// makeForwardDate builds a date, picking the next occurrence on or after
// today when no year was given.
func makeForwardDate(y, mo, d int, today time.Time) (time.Time, bool) {
	if y != 0 {
		return makeDate(y, mo, d)
	}
	dt, ok := makeDate(today.Year(), mo, d)
	if !ok {
		return time.Time{}, false
	}
	if dt.Before(today) {
		dt, ok = makeDate(today.Year()+1, mo, d)
	}
	return dt, ok
}

func resolveHour(h int, meridiem string) int {
	switch strings.ToLower(meridiem) {
	case "pm":
		if h != 12 {
			h += 12
		}
	case "am":
		if h == 12 {
			h = 0
		}
	}
	return h
}

func validClock(h, m int, meridiem string) bool {
	if m < 0 || m > 59 {
		return false
	}
	if meridiem != "" {
		return h >= 1 && h <= 12
	}
	return h >= 0 && h <= 23
}

func group(text string, m []int, i int) string {
	if 2*i+1 >= len(m) || m[2*i] < 0 {
		return ""
	}
	return text[m[2*i]:m[2*i+1]]
}

func atoiGroup(text string, m []int, i int) int {
	n, _ := strconv.Atoi(group(text, m, i))
	return n
}
