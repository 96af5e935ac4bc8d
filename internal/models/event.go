package models

import "time"

// Recurrence cadences recognized by the parser.
const (
	RecurNone     = "none"
	RecurDaily    = "daily"
	RecurWeekly   = "weekly"
	RecurMonthly  = "monthly"
	RecurYearly   = "yearly"
	RecurWeekdays = "weekdays"
)

// Defaults applied to every parsed event.
const (
	DefaultColor        = "#3b82f6"
	DefaultTimezone     = "UTC"
	DefaultVisibility   = "default"
	DefaultAvailability = "busy"
	DefaultReminder     = "15min"
)

// Event is the canonical calendar event record. Date is a YYYY-MM-DD string
// and StartTime/EndTime are HH:MM 24-hour strings; both stay empty for
// all-day events. The parser produces events with no ID; the repository
// assigns one on create.
type Event struct {
	ID           string    `json:"id,omitempty"`
	Title        string    `json:"title"`
	Date         string    `json:"date"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Attendees    []string  `json:"attendees"`
	Reminders    []string  `json:"reminders"`
	Recurring    string    `json:"recurring"`
	Timezone     string    `json:"timezone"`
	Color        string    `json:"color"`
	IsAllDay     bool      `json:"isAllDay"`
	Visibility   string    `json:"visibility"`
	Availability string    `json:"availability"`
	UserID       string    `json:"userId,omitempty"`
	Source       string    `json:"source,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// EventRequest is the payload for creating or updating an event.
type EventRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Date         string   `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string   `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime      string   `json:"endTime" validate:"omitempty,datetime=15:04"`
	Location     string   `json:"location" validate:"max=300"`
	Description  string   `json:"description"`
	Attendees    []string `json:"attendees" validate:"dive,email"`
	Reminders    []string `json:"reminders"`
	Recurring    string   `json:"recurring" validate:"omitempty,oneof=none daily weekly monthly yearly weekdays"`
	IsAllDay     bool     `json:"isAllDay"`
	Visibility   string   `json:"visibility"`
	Availability string   `json:"availability"`
}

// ConflictRef points at an existing event that overlaps a candidate.
type ConflictRef struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ValidationResult carries everything the validator found out about a
// candidate event. The slices are never nil.
type ValidationResult struct {
	Conflicts      []ConflictRef `json:"conflicts"`
	Warnings       []string      `json:"warnings"`
	MissingDetails []string      `json:"missingDetails"`
	ParsedEvent    *Event        `json:"parsedEvent"`
}

// Notification is the message shape published on the Redis event bus.
type Notification struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}
