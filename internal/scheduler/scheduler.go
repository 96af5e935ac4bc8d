// Package scheduler runs the reminder loop. Every minute it scans today's
// timed events and publishes a reminder for each one whose start falls
// within the configured lead window.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/calinvite/calinvite/internal/events"
	"github.com/calinvite/calinvite/internal/models"
	"github.com/calinvite/calinvite/internal/repository"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Scheduler struct {
	repo     repository.EventRepository
	notifier events.Notifier
	lead     time.Duration
	log      zerolog.Logger

	cron *cron.Cron
	now  func() time.Time

	mu       sync.Mutex
	notified map[string]struct{}
}

// New creates a reminder scheduler with the given lead window.
func New(repo repository.EventRepository, notifier events.Notifier, lead time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		repo:     repo,
		notifier: notifier,
		lead:     lead,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		notified: make(map[string]struct{}),
	}
}

// Start begins the minute tick. Call Stop to shut it down.
func (s *Scheduler) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc("* * * * *", s.tick); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Dur("lead", s.lead).Msg("Reminder scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := s.now()
	if err := s.CheckReminders(ctx, now); err != nil {
		s.log.Error().Err(err).Msg("Reminder scan failed")
	}
}

// CheckReminders publishes a reminder for each timed event starting within
// the lead window. Each event is notified at most once per process.
func (s *Scheduler) CheckReminders(ctx context.Context, now time.Time) error {
	today := now.Format("2006-01-02")
	list, err := s.repo.ListByDate(ctx, today)
	if err != nil {
		return err
	}

	for _, event := range list {
		if event.IsAllDay || event.StartTime == "" {
			continue
		}
		start, err := time.Parse("2006-01-02T15:04", event.Date+"T"+event.StartTime)
		if err != nil {
			continue
		}
		until := start.Sub(now)
		if until < 0 || until > s.lead {
			continue
		}
		if !s.markNotified(event.ID) {
			continue
		}
		if err := s.notifier.PublishEventReminder(ctx, event); err != nil {
			s.log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to publish reminder")
			continue
		}
		s.log.Info().Str("event_id", event.ID).Str("title", event.Title).
			Str("start_time", event.StartTime).Msg("Reminder sent")
	}

	s.pruneNotified(list)
	return nil
}

// markNotified records the event ID and reports whether it was new.
func (s *Scheduler) markNotified(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.notified[id]; seen {
		return false
	}
	s.notified[id] = struct{}{}
	return true
}

// pruneNotified drops entries for events no longer on today's calendar so the
// set does not grow unbounded in a long-running process.
func (s *Scheduler) pruneNotified(today []*models.Event) {
	current := make(map[string]struct{}, len(today))
	for _, event := range today {
		current[event.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.notified {
		if _, ok := current[id]; !ok {
			delete(s.notified, id)
		}
	}
}
