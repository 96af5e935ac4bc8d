package parser

import (
	"time"

	"github.com/calinvite/calinvite/internal/models"
)

// FindConflicts reports existing timed events on the same calendar date
// whose [start,end) interval overlaps the candidate's. Intervals are
// half-open, so back-to-back events touching at a boundary do not conflict.
// All-day candidates never conflict. Stored events with unparsable date or
// time strings are skipped rather than aborting the scan. Results keep the
// order of the existing slice.
func FindConflicts(candidate *models.Event, existing []*models.Event) []models.ConflictRef {
	conflicts := []models.ConflictRef{}
	if candidate.IsAllDay || candidate.StartTime == "" {
		return conflicts
	}

	newStart, err := combineDateTime(candidate.Date, candidate.StartTime)
	if err != nil {
		return conflicts
	}
	newEnd, err := combineDateTime(candidate.Date, orElse(candidate.EndTime, candidate.StartTime))
	if err != nil {
		return conflicts
	}

	for _, ex := range existing {
		if ex.IsAllDay || ex.StartTime == "" || ex.Date != candidate.Date {
			continue
		}
		exStart, err := combineDateTime(ex.Date, ex.StartTime)
		if err != nil {
			continue
		}
		exEnd, err := combineDateTime(ex.Date, orElse(ex.EndTime, ex.StartTime))
		if err != nil {
			continue
		}
		if newStart.Before(exEnd) && newEnd.After(exStart) {
			conflicts = append(conflicts, models.ConflictRef{
				ID:        ex.ID,
				Title:     ex.Title,
				Date:      ex.Date,
				StartTime: ex.StartTime,
				EndTime:   ex.EndTime,
			})
		}
	}

	return conflicts
}

// combineDateTime joins a date and a clock string into one instant so the
// comparison is never a bare HH:MM string comparison.
func combineDateTime(date, clock string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04", date+"T"+clock)
}

func orElse(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
