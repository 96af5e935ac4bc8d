package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/calinvite/calinvite/internal/models"
)

// Export renders events as an iCalendar document. Timed events carry
// DTSTART/DTEND instants, all-day events use date values, and recurring
// events get an RRULE so consumers expand them natively.
func Export(events []*models.Event) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//Calinvite//Calendar//EN")

	for _, event := range events {
		ve := cal.AddEvent(event.ID)
		ve.SetSummary(event.Title)
		ve.SetDtStampTime(event.UpdatedAt)
		if event.Location != "" {
			ve.SetLocation(event.Location)
		}
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		for _, attendee := range event.Attendees {
			if strings.Contains(attendee, "@") {
				ve.AddAttendee(attendee)
			}
		}

		if event.IsAllDay || event.StartTime == "" {
			day, err := time.Parse("2006-01-02", event.Date)
			if err != nil {
				continue
			}
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		} else {
			start, err := time.Parse("2006-01-02T15:04", event.Date+"T"+event.StartTime)
			if err != nil {
				continue
			}
			end := start.Add(time.Hour)
			if event.EndTime != "" {
				if e, err := time.Parse("2006-01-02T15:04", event.Date+"T"+event.EndTime); err == nil {
					end = e
					if !end.After(start) {
						end = end.AddDate(0, 0, 1)
					}
				}
			}
			ve.SetStartAt(start)
			ve.SetEndAt(end)
		}

		if rule := recurrenceRule(event.Recurring); rule != "" {
			ve.AddRrule(rule)
		}
	}

	return cal.Serialize(), nil
}

func recurrenceRule(recurring string) string {
	switch recurring {
	case models.RecurDaily:
		return "FREQ=DAILY"
	case models.RecurWeekly:
		return "FREQ=WEEKLY"
	case models.RecurMonthly:
		return "FREQ=MONTHLY"
	case models.RecurYearly:
		return "FREQ=YEARLY"
	case models.RecurWeekdays:
		return "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR"
	default:
		return ""
	}
}
