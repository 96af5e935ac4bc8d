package repository

import (
	"context"
	"time"

	"github.com/calinvite/calinvite/internal/models"
)

// SeedDemoEvents inserts the starter events into an empty store so a fresh
// install has something on the calendar. A non-empty store is left alone.
func SeedDemoEvents(ctx context.Context, repo EventRepository, now time.Time) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format("2006-01-02")
	}
	seeds := []*models.Event{
		{Title: "Team Standup", Date: day(0), Description: "Daily team standup meeting", Source: "local"},
		{Title: "Project Review", Date: day(2), Description: "Monthly project review session", Source: "local"},
		{Title: "Release Day", Date: day(5), Description: "Version 1.0 release", Source: "local"},
	}
	for _, ev := range seeds {
		ev.IsAllDay = true
		ev.Recurring = models.RecurNone
		ev.Timezone = models.DefaultTimezone
		ev.Color = models.DefaultColor
		ev.Visibility = models.DefaultVisibility
		ev.Availability = models.DefaultAvailability
		ev.Reminders = []string{models.DefaultReminder}
		if err := repo.Create(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
