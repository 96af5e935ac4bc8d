package events

import (
	"context"
	"time"

	"github.com/calinvite/calinvite/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Notification event types published on the bus.
const (
	TypeEventCreated  = "event_created"
	TypeEventUpdated  = "event_updated"
	TypeEventDeleted  = "event_deleted"
	TypeEventParsed   = "event_parsed"
	TypeEventReminder = "event_reminder"
)

// Notifier delivers calendar notifications. The server keeps working without
// Redis, so a no-op implementation backs the unconfigured case.
type Notifier interface {
	PublishEventCreated(ctx context.Context, event *models.Event) error
	PublishEventUpdated(ctx context.Context, event *models.Event) error
	PublishEventDeleted(ctx context.Context, eventID string) error
	PublishEventParsed(ctx context.Context, event *models.Event) error
	PublishEventReminder(ctx context.Context, event *models.Event) error
}

// Publisher handles publishing notifications to Redis.
type Publisher struct {
	redis   *RedisClient
	channel string
	log     zerolog.Logger
}

// NewPublisher creates a new notification publisher
func NewPublisher(redis *RedisClient, channel string, log zerolog.Logger) *Publisher {
	return &Publisher{
		redis:   redis,
		channel: channel,
		log:     log,
	}
}

func (p *Publisher) publish(ctx context.Context, notifType string, payload map[string]any) error {
	notif := &models.Notification{
		ID:        uuid.New().String(),
		Type:      notifType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := p.redis.Publish(ctx, p.channel, notif); err != nil {
		p.log.Error().Err(err).Str("type", notifType).Msg("Failed to publish notification")
		return err
	}
	return nil
}

func eventPayload(event *models.Event) map[string]any {
	return map[string]any{
		"event_id": event.ID,
		"title":    event.Title,
		"date":     event.Date,
	}
}

// PublishEventCreated publishes an event creation notification
func (p *Publisher) PublishEventCreated(ctx context.Context, event *models.Event) error {
	return p.publish(ctx, TypeEventCreated, eventPayload(event))
}

// PublishEventUpdated publishes an event update notification
func (p *Publisher) PublishEventUpdated(ctx context.Context, event *models.Event) error {
	return p.publish(ctx, TypeEventUpdated, eventPayload(event))
}

// PublishEventDeleted publishes an event deletion notification
func (p *Publisher) PublishEventDeleted(ctx context.Context, eventID string) error {
	return p.publish(ctx, TypeEventDeleted, map[string]any{"event_id": eventID})
}

// PublishEventParsed announces that natural language text produced an event.
func (p *Publisher) PublishEventParsed(ctx context.Context, event *models.Event) error {
	return p.publish(ctx, TypeEventParsed, eventPayload(event))
}

// PublishEventReminder publishes an upcoming-event reminder.
func (p *Publisher) PublishEventReminder(ctx context.Context, event *models.Event) error {
	payload := eventPayload(event)
	payload["start_time"] = event.StartTime
	return p.publish(ctx, TypeEventReminder, payload)
}

// NoopNotifier drops every notification. Used when REDIS_URL is not set.
type NoopNotifier struct{}

func (NoopNotifier) PublishEventCreated(context.Context, *models.Event) error  { return nil }
func (NoopNotifier) PublishEventUpdated(context.Context, *models.Event) error  { return nil }
func (NoopNotifier) PublishEventDeleted(context.Context, string) error         { return nil }
func (NoopNotifier) PublishEventParsed(context.Context, *models.Event) error   { return nil }
func (NoopNotifier) PublishEventReminder(context.Context, *models.Event) error { return nil }
