package ics

import (
	"strings"
	"testing"

	"github.com/calinvite/calinvite/internal/models"
)

func TestExportTimedEvent(t *testing.T) {
	out, err := Export([]*models.Event{{
		ID:        "ev-1",
		Title:     "Dentist",
		Date:      "2025-06-13",
		StartTime: "14:00",
		EndTime:   "15:00",
		Location:  "Main St Clinic",
		Attendees: []string{"john@example.com"},
	}})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"SUMMARY:Dentist",
		"LOCATION:Main St Clinic",
		"DTSTART:20250613T140000Z",
		"DTEND:20250613T150000Z",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.Contains(out, "john@example.com") {
		t.Error("output missing attendee")
	}
}

func TestExportAllDayEvent(t *testing.T) {
	out, err := Export([]*models.Event{{
		ID:       "ev-2",
		Title:    "Holiday",
		Date:     "2025-06-13",
		IsAllDay: true,
	}})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(out, "DTSTART;VALUE=DATE:20250613") {
		t.Errorf("all-day event should use a date value, got:\n%s", out)
	}
}

func TestExportRecurringEventHasRrule(t *testing.T) {
	out, err := Export([]*models.Event{{
		ID:        "ev-3",
		Title:     "Standup",
		Date:      "2025-06-13",
		StartTime: "09:00",
		Recurring: models.RecurWeekdays,
	}})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(out, "RRULE:FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR") {
		t.Errorf("output missing weekday rrule, got:\n%s", out)
	}
}

func TestExportSkipsMalformedDates(t *testing.T) {
	out, err := Export([]*models.Event{
		{ID: "bad", Title: "Broken", Date: "junk", StartTime: "14:00"},
		{ID: "ok", Title: "Fine", Date: "2025-06-13", IsAllDay: true},
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(out, "SUMMARY:Fine") {
		t.Error("well-formed event missing from output")
	}
	if strings.Contains(out, "DTSTART:junk") {
		t.Error("malformed date leaked into output")
	}
}
