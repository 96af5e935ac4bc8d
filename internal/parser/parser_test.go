package parser

import (
	"errors"
	"testing"
	"time"
)

// Tuesday, 2025-06-10 09:00 UTC.
var ref = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func TestParseBasicScenario(t *testing.T) {
	ev, err := Parse("Dentist tomorrow at 2pm", ref)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if ev.Date != "2025-06-11" {
		t.Errorf("date = %q, want 2025-06-11", ev.Date)
	}
	if ev.StartTime != "14:00" {
		t.Errorf("startTime = %q, want 14:00", ev.StartTime)
	}
	if ev.EndTime != "15:00" {
		t.Errorf("endTime = %q, want 15:00 (default one hour duration)", ev.EndTime)
	}
	if ev.IsAllDay {
		t.Error("isAllDay = true, want false")
	}
	if ev.Title != "Dentist" {
		t.Errorf("title = %q, want Dentist", ev.Title)
	}
}

func TestParseDateExpressions(t *testing.T) {
	wednesday := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		now  time.Time
		date string
	}{
		{"tomorrow", "Dentist tomorrow", ref, "2025-06-11"},
		{"today", "Standup today", ref, "2025-06-10"},
		{"day after tomorrow", "Review the day after tomorrow", ref, "2025-06-12"},
		{"in n days", "Release in 3 days", ref, "2025-06-13"},
		{"in n weeks", "Checkup in 2 weeks", ref, "2025-06-24"},
		{"next week", "Planning next week", ref, "2025-06-17"},
		{"next monday from wednesday", "Lunch next Monday", wednesday, "2025-06-16"},
		{"bare weekday forward", "Call on Friday", ref, "2025-06-13"},
		{"bare weekday today matches", "Call on Tuesday", ref, "2025-06-10"},
		{"next same weekday is a week out", "Call next Tuesday", ref, "2025-06-17"},
		{"iso date", "Deploy on 2025-12-01", ref, "2025-12-01"},
		{"slash date forward bias", "Party on 4/5", ref, "2026-04-05"},
		{"month name day", "Conference on June 20th", ref, "2025-06-20"},
		{"month name past rolls a year", "Kickoff on January 5", ref, "2026-01-05"},
		{"day month", "Trip on 20 June", ref, "2025-06-20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Parse(tt.text, tt.now)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if ev.Date != tt.date {
				t.Errorf("date = %q, want %q", ev.Date, tt.date)
			}
			if !ev.IsAllDay {
				t.Error("isAllDay = false, want true for date-only input")
			}
		})
	}
}

func TestParseForwardBiasNeverPast(t *testing.T) {
	for wd := 0; wd < 7; wd++ {
		now := ref.AddDate(0, 0, wd)
		ev, err := Parse("Sync next Monday", now)
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		got, err := time.Parse("2006-01-02", ev.Date)
		if err != nil {
			t.Fatalf("bad date %q: %v", ev.Date, err)
		}
		if got.Before(truncateToDay(now)) {
			t.Errorf("reference %s resolved to past date %s", now.Format("2006-01-02"), ev.Date)
		}
		if got.Weekday() != time.Monday {
			t.Errorf("resolved to %s, want Monday", got.Weekday())
		}
	}
}

func TestParseTimeExpressions(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start string
		end   string
	}{
		{"pm hour", "Dinner at 7pm", "19:00", "20:00"},
		{"am hour", "Run at 6am", "06:00", "07:00"},
		{"clock time", "Review at 15:30", "15:30", "16:30"},
		{"clock time with meridiem", "Call at 2:45 pm", "14:45", "15:45"},
		{"noon", "Lunch at noon", "12:00", "13:00"},
		{"midnight", "Maintenance at midnight", "00:00", "01:00"},
		{"bare at hour", "Meeting at 9", "09:00", "10:00"},
		{"range", "Workshop from 2pm to 4pm", "14:00", "16:00"},
		{"range inherits meridiem", "Workshop from 2 to 4pm", "14:00", "16:00"},
		{"range 24h", "Shift 9:00 - 17:30", "09:00", "17:30"},
		{"12am", "Flight at 12am", "00:00", "01:00"},
		{"12pm", "Brunch at 12pm", "12:00", "13:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Parse(tt.text, ref)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if ev.StartTime != tt.start {
				t.Errorf("startTime = %q, want %q", ev.StartTime, tt.start)
			}
			if ev.EndTime != tt.end {
				t.Errorf("endTime = %q, want %q", ev.EndTime, tt.end)
			}
			if ev.IsAllDay {
				t.Error("isAllDay = true for timed input")
			}
			// A time with no date expression implies the reference date.
			if ev.Date != "2025-06-10" {
				t.Errorf("date = %q, want reference date", ev.Date)
			}
		})
	}
}

func TestParseLateStartRollsEndOverMidnight(t *testing.T) {
	ev, err := Parse("Stream at 11:30pm", ref)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if ev.StartTime != "23:30" || ev.EndTime != "00:30" {
		t.Errorf("got %s-%s, want 23:30-00:30", ev.StartTime, ev.EndTime)
	}
}

func TestParseEntities(t *testing.T) {
	ev, err := Parse("Meeting at Starbucks on Friday with John", ref)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if ev.Location != "Starbucks" {
		t.Errorf("location = %q, want Starbucks", ev.Location)
	}
	if ev.Description != "With: John" {
		t.Errorf("description = %q, want With: John", ev.Description)
	}
	if ev.Title != "Meeting" {
		t.Errorf("title = %q, want Meeting", ev.Title)
	}
	if ev.Date != "2025-06-13" {
		t.Errorf("date = %q, want 2025-06-13", ev.Date)
	}
}

func TestParseAttendeeEmails(t *testing.T) {
	ev, err := Parse("Sync with bob@example.com and alice@example.com", ref)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := []string{"bob@example.com", "alice@example.com"}
	if len(ev.Attendees) != len(want) {
		t.Fatalf("attendees = %v, want %v", ev.Attendees, want)
	}
	for i := range want {
		if ev.Attendees[i] != want[i] {
			t.Errorf("attendees[%d] = %q, want %q", i, ev.Attendees[i], want[i])
		}
	}
}

// Duplicated addresses stay duplicated: the extractor keeps every match in
// order of appearance. This mirrors the long-standing behavior callers rely
// on, so a change here should be deliberate.
func TestParseAttendeesNotDeduplicated(t *testing.T) {
	ev, err := Parse("Pairing bob@example.com bob@example.com", ref)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(ev.Attendees) != 2 {
		t.Errorf("attendees = %v, want both duplicate entries kept", ev.Attendees)
	}
}

func TestParseTitleFallback(t *testing.T) {
	ev, err := Parse("tomorrow", ref)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if ev.Title != "Untitled Event" {
		t.Errorf("title = %q, want Untitled Event", ev.Title)
	}
	if !ev.IsAllDay {
		t.Error("isAllDay = false, want true")
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := Parse(text, ref); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Parse(%q) error = %v, want ErrEmptyInput", text, err)
		}
	}
}

func TestParseNoExpressionsIsDegradedNotFailed(t *testing.T) {
	ev, err := Parse("random words only", ref)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if ev.Date != "" {
		t.Errorf("date = %q, want empty", ev.Date)
	}
	if ev.IsAllDay {
		t.Error("isAllDay = true, want false on degraded output")
	}
	if ev.Title != "Random words only" {
		t.Errorf("title = %q, want Random words only", ev.Title)
	}
}

func TestParseDefaults(t *testing.T) {
	ev, err := Parse("Dentist tomorrow", ref)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(ev.Reminders) != 1 || ev.Reminders[0] != "15min" {
		t.Errorf("reminders = %v, want [15min]", ev.Reminders)
	}
	if ev.Timezone != "UTC" || ev.Color != "#3b82f6" {
		t.Errorf("timezone/color = %q/%q, want UTC/#3b82f6", ev.Timezone, ev.Color)
	}
	if ev.Visibility != "default" || ev.Availability != "busy" {
		t.Errorf("visibility/availability = %q/%q", ev.Visibility, ev.Availability)
	}
	if ev.Recurring != "none" {
		t.Errorf("recurring = %q, want none", ev.Recurring)
	}
	if ev.Attendees == nil {
		t.Error("attendees is nil, want empty slice")
	}
}

func TestParseIsDeterministic(t *testing.T) {
	first, err := Parse("Coffee with Ana tomorrow at 10am", ref)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Parse("Coffee with Ana tomorrow at 10am", ref)
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		if again.Title != first.Title || again.Date != first.Date ||
			again.StartTime != first.StartTime || again.EndTime != first.EndTime {
			t.Fatalf("parse not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestDetectRecurrence(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Run every day at 7am", "daily"},
		{"Groceries every week", "weekly"},
		{"Gym every Monday", "weekly"},
		{"Pay rent every month", "monthly"},
		{"Renew domain every year", "yearly"},
		{"Checkup annually", "none"},
		{"Standup every weekday at 9am", "weekdays"},
		{"Standup every workday", "weekdays"},
		{"One-off dinner tomorrow", "none"},
		// Priority order: daily wins when several cadences appear.
		{"every day and every week", "daily"},
	}
	for _, tt := range tests {
		if got := detectRecurrence(tt.text); got != tt.want {
			t.Errorf("detectRecurrence(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
