package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/calinvite/calinvite/internal/models"
)

var (
	medicalTitleRe   = regexp.MustCompile(`(?i)dentist|doctor|medical|appointment|checkup`)
	businessTitleRe  = regexp.MustCompile(`(?i)meeting|conference|standup|review`)
	timedLookingRe   = regexp.MustCompile(`(?i)meeting|call|appointment`)
	needsLocationRe  = regexp.MustCompile(`(?i)meeting|lunch|dinner|coffee|appointment`)
	needsAttendeesRe = regexp.MustCompile(`(?i)meeting|lunch|dinner|with|invite`)
)

// Warning and missing-detail heuristics as independent (predicate, message)
// rules. Every applicable rule fires; none are mutually exclusive.
var warningRules = []struct {
	applies func(e *models.Event) bool
	message func(e *models.Event) string
}{
	{
		applies: func(e *models.Event) bool {
			h, ok := startHour(e)
			return ok && medicalTitleRe.MatchString(e.Title) && (h < 7 || h > 18)
		},
		message: func(e *models.Event) string {
			return fmt.Sprintf("⏰ %s is scheduled for %s. Medical appointments are usually during business hours (8am-6pm).", e.Title, e.StartTime)
		},
	},
	{
		applies: func(e *models.Event) bool {
			h, ok := startHour(e)
			return ok && businessTitleRe.MatchString(e.Title) && (h < 8 || h > 19)
		},
		message: func(e *models.Event) string {
			return fmt.Sprintf("⏰ %s is scheduled for %s. Business meetings are typically during working hours.", e.Title, e.StartTime)
		},
	},
	{
		applies: func(e *models.Event) bool {
			h, ok := startHour(e)
			return ok && h < 6
		},
		message: func(e *models.Event) string {
			return fmt.Sprintf("🌙 Event scheduled very early (%s). Did you mean PM?", e.StartTime)
		},
	},
	{
		applies: func(e *models.Event) bool {
			h, ok := startHour(e)
			return ok && h > 22
		},
		message: func(e *models.Event) string {
			return fmt.Sprintf("🌙 Event scheduled very late (%s). Is this correct?", e.StartTime)
		},
	},
	{
		// All-day but the title reads like a timed event. This stays a
		// warning, not a missing detail.
		applies: func(e *models.Event) bool {
			return e.IsAllDay && timedLookingRe.MatchString(e.Title)
		},
		message: func(e *models.Event) string {
			return "⏱️ This looks like a timed event, but no specific time was detected. Consider adding a time."
		},
	},
}

var missingDetailRules = []struct {
	applies func(e *models.Event) bool
	message string
}{
	{
		applies: func(e *models.Event) bool {
			return e.Location == "" && needsLocationRe.MatchString(e.Title)
		},
		message: "📍 Location - Where will this take place?",
	},
	{
		applies: func(e *models.Event) bool {
			return len(e.Attendees) == 0 && needsAttendeesRe.MatchString(e.Title)
		},
		message: "👥 Attendees - Who else is involved?",
	},
	{
		applies: func(e *models.Event) bool {
			return len(e.Description) < 10
		},
		message: "📝 Description - Add notes or additional details?",
	},
}

// Validate checks a candidate event against the existing set and the
// heuristic rule tables. It never fails: a quiet event yields empty slices,
// not an error.
func Validate(event *models.Event, existing []*models.Event) *models.ValidationResult {
	result := &models.ValidationResult{
		Conflicts:      []models.ConflictRef{},
		Warnings:       []string{},
		MissingDetails: []string{},
		ParsedEvent:    event,
	}

	if !event.IsAllDay && event.StartTime != "" {
		result.Conflicts = FindConflicts(event, existing)
	}

	for _, rule := range warningRules {
		if rule.applies(event) {
			result.Warnings = append(result.Warnings, rule.message(event))
		}
	}
	for _, rule := range missingDetailRules {
		if rule.applies(event) {
			result.MissingDetails = append(result.MissingDetails, rule.message)
		}
	}

	return result
}

// startHour parses the hour component of the event's start time.
func startHour(e *models.Event) (int, bool) {
	if e.StartTime == "" {
		return 0, false
	}
	h, err := strconv.Atoi(strings.SplitN(e.StartTime, ":", 2)[0])
	if err != nil {
		return 0, false
	}
	return h, true
}
