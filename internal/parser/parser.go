// Package parser turns free-text event descriptions into structured calendar
// events and checks candidates against an existing event set. It is pure
// computation: no I/O, no shared state, safe for concurrent use. The
// AI-assisted strategies in internal/ai fall back to this package whenever a
// model call fails, times out or returns garbage.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/calinvite/calinvite/internal/models"
)

// ErrEmptyInput is returned when the input text is empty or whitespace-only.
var ErrEmptyInput = errors.New("input text is empty")

// Parse extracts a structured event from natural-language text. Relative
// date expressions resolve forward from now. Parse never fails on text that
// simply contains no recognizable expressions; the result then carries an
// empty date and the caller should treat it as low-confidence.
func Parse(text string, now time.Time) (*models.Event, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	dt := extractDateTime(text, now)
	ent := extractEntities(cutSpans(text, dt.consumed))

	return assemble(text, dt, ent), nil
}

// assemble merges the extraction passes into a complete event record. It
// never fails; garbage input still yields a fully-shaped event.
func assemble(text string, dt dateTimeInfo, ent entityInfo) *models.Event {
	ev := &models.Event{
		Title:        ent.title,
		Location:     ent.location,
		Attendees:    ent.attendees,
		Description:  strings.Join(ent.withNotes, " | "),
		Reminders:    []string{models.DefaultReminder},
		Recurring:    detectRecurrence(text),
		Timezone:     models.DefaultTimezone,
		Color:        models.DefaultColor,
		Visibility:   models.DefaultVisibility,
		Availability: models.DefaultAvailability,
	}

	if dt.dateKnown {
		ev.Date = dt.date.Format("2006-01-02")
		if dt.hourKnown {
			ev.StartTime = formatClock(dt.start)
			ev.EndTime = formatClock(dt.end)
		} else {
			ev.IsAllDay = true
		}
	}

	return ev
}

func formatClock(c clockTime) string {
	return fmt.Sprintf("%02d:%02d", c.hour, c.minute)
}
