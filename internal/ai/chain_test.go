package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calinvite/calinvite/internal/models"
	"github.com/calinvite/calinvite/internal/parser"
	"github.com/rs/zerolog"
)

var ref = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

type stubStrategy struct {
	name  string
	event *models.Event
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) ParseEvent(ctx context.Context, text string, now time.Time) (*models.Event, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.event, nil
}

func TestChainFirstStrategyWins(t *testing.T) {
	want := &models.Event{Title: "From model"}
	first := &stubStrategy{name: "first", event: want}
	second := &stubStrategy{name: "second", event: &models.Event{Title: "Never used"}}

	chain := NewChain(zerolog.Nop(), time.Second, first, second)
	got, err := chain.ParseEvent(context.Background(), "Dentist tomorrow", ref)
	if err != nil {
		t.Fatalf("ParseEvent returned error: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want first strategy result", got)
	}
	if second.calls != 0 {
		t.Error("second strategy called despite first succeeding")
	}
}

func TestChainFallsThroughFailures(t *testing.T) {
	broken := &stubStrategy{name: "broken", err: errors.New("model unreachable")}
	want := &models.Event{Title: "Recovered"}
	working := &stubStrategy{name: "working", event: want}

	chain := NewChain(zerolog.Nop(), time.Second, broken, working)
	got, err := chain.ParseEvent(context.Background(), "Dentist tomorrow", ref)
	if err != nil {
		t.Fatalf("ParseEvent returned error: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want second strategy result", got)
	}
	if broken.calls != 1 {
		t.Errorf("broken strategy calls = %d, want 1", broken.calls)
	}
}

// The deterministic parser is the terminal fallback: with every strategy
// failing the chain still answers, and deterministically.
func TestChainDeterministicFallback(t *testing.T) {
	broken := &stubStrategy{name: "broken", err: errors.New("boom")}
	chain := NewChain(zerolog.Nop(), time.Second, broken)

	got, err := chain.ParseEvent(context.Background(), "Dentist tomorrow at 2pm", ref)
	if err != nil {
		t.Fatalf("ParseEvent returned error: %v", err)
	}
	if got.Title != "Dentist" || got.Date != "2025-06-11" || got.StartTime != "14:00" {
		t.Errorf("fallback parse = %+v", got)
	}
}

func TestChainEmptyInput(t *testing.T) {
	chain := NewChain(zerolog.Nop(), time.Second)
	if _, err := chain.ParseEvent(context.Background(), "  ", ref); !errors.Is(err, parser.ErrEmptyInput) {
		t.Errorf("error = %v, want ErrEmptyInput", err)
	}
}

func TestSanitizeParsedRejectsMalformedFields(t *testing.T) {
	if _, err := sanitizeParsed(parsedEventDTO{Date: "June 11"}); err == nil {
		t.Error("malformed date accepted")
	}
	if _, err := sanitizeParsed(parsedEventDTO{Date: "2025-02-30"}); err == nil {
		t.Error("impossible date accepted")
	}
	if _, err := sanitizeParsed(parsedEventDTO{Date: "2025-06-11", StartTime: "2pm"}); err == nil {
		t.Error("malformed time accepted")
	}
}

func TestSanitizeParsedFillsDefaults(t *testing.T) {
	ev, err := sanitizeParsed(parsedEventDTO{Date: "2025-06-11", Recurring: "sometimes"})
	if err != nil {
		t.Fatalf("sanitizeParsed returned error: %v", err)
	}
	if ev.Title != "Untitled Event" {
		t.Errorf("title = %q", ev.Title)
	}
	if ev.Recurring != models.RecurNone {
		t.Errorf("recurring = %q, want none", ev.Recurring)
	}
	if !ev.IsAllDay {
		t.Error("date without start time should be all-day")
	}
	if ev.Timezone != models.DefaultTimezone || len(ev.Reminders) != 1 {
		t.Errorf("defaults not applied: %+v", ev)
	}
}
