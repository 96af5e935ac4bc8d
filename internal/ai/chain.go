// Package ai layers optional model-backed parsing on top of the
// deterministic parser. Strategies are tried in order; any failure, timeout
// or malformed response falls through, and the deterministic parser is the
// terminal step that always answers.
package ai

import (
	"context"
	"strings"
	"time"

	"github.com/calinvite/calinvite/internal/models"
	"github.com/calinvite/calinvite/internal/parser"
	"github.com/rs/zerolog"
)

// ParseStrategy is one way of turning text into an event.
type ParseStrategy interface {
	Name() string
	ParseEvent(ctx context.Context, text string, now time.Time) (*models.Event, error)
}

// Chain tries each strategy in order with a per-attempt timeout. No strategy
// is required: an empty chain is just the deterministic parser.
type Chain struct {
	strategies []ParseStrategy
	timeout    time.Duration
	log        zerolog.Logger
}

func NewChain(log zerolog.Logger, timeout time.Duration, strategies ...ParseStrategy) *Chain {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Chain{strategies: strategies, timeout: timeout, log: log}
}

// ParseEvent resolves text through the first strategy that produces a sane
// event, falling back to parser.Parse. Only blank input fails.
func (c *Chain) ParseEvent(ctx context.Context, text string, now time.Time) (*models.Event, error) {
	if strings.TrimSpace(text) == "" {
		return nil, parser.ErrEmptyInput
	}

	for _, s := range c.strategies {
		attempt, cancel := context.WithTimeout(ctx, c.timeout)
		ev, err := s.ParseEvent(attempt, text, now)
		cancel()
		if err != nil {
			c.log.Warn().Err(err).Str("strategy", s.Name()).Msg("Parse strategy failed, trying next")
			continue
		}
		c.log.Debug().Str("strategy", s.Name()).Msg("Parse strategy succeeded")
		return ev, nil
	}

	return parser.Parse(text, now)
}
