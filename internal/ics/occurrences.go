// Package ics expands recurring events and renders the calendar as iCalendar.
package ics

import (
	"fmt"
	"time"

	"github.com/calinvite/calinvite/internal/models"
	"github.com/teambition/rrule-go"
)

// Occurrence is a single expanded instance of a recurring event.
type Occurrence struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// Expand returns the first count occurrences of an event, starting at its own
// date. Non-recurring events yield a single occurrence.
func Expand(event *models.Event, count int) ([]Occurrence, error) {
	if count <= 0 {
		count = 1
	}

	start, err := eventStart(event)
	if err != nil {
		return nil, err
	}

	if event.Recurring == "" || event.Recurring == models.RecurNone {
		return []Occurrence{{Date: event.Date, StartTime: event.StartTime, EndTime: event.EndTime}}, nil
	}

	opt := rrule.ROption{Dtstart: start, Count: count}
	switch event.Recurring {
	case models.RecurDaily:
		opt.Freq = rrule.DAILY
	case models.RecurWeekly:
		opt.Freq = rrule.WEEKLY
	case models.RecurMonthly:
		opt.Freq = rrule.MONTHLY
	case models.RecurYearly:
		opt.Freq = rrule.YEARLY
	case models.RecurWeekdays:
		opt.Freq = rrule.DAILY
		opt.Byweekday = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}
	default:
		return nil, fmt.Errorf("unknown recurrence: %s", event.Recurring)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, err
	}

	occurrences := make([]Occurrence, 0, count)
	for _, t := range rule.All() {
		occurrences = append(occurrences, Occurrence{
			Date:      t.Format("2006-01-02"),
			StartTime: event.StartTime,
			EndTime:   event.EndTime,
		})
	}
	return occurrences, nil
}

// eventStart combines the event date and start time into a UTC instant.
// All-day events anchor at midnight.
func eventStart(event *models.Event) (time.Time, error) {
	if event.StartTime != "" && !event.IsAllDay {
		return time.Parse("2006-01-02T15:04", event.Date+"T"+event.StartTime)
	}
	return time.Parse("2006-01-02", event.Date)
}
