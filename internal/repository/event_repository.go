package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/calinvite/calinvite/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrEventNotFound = errors.New("event not found")
)

// EventRepository defines the interface for event data access.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Update(ctx context.Context, id string, req *models.EventRequest) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*models.Event, error)
	ListByDate(ctx context.Context, date string) ([]*models.Event, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Event, error)
	ListAll(ctx context.Context) ([]*models.Event, error)
	Count(ctx context.Context) (int, error)
}

type eventRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB, log zerolog.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log,
	}
}

const eventColumns = `id, title, date, start_time, end_time, location, description,
	attendees, reminders, recurring, timezone, color, is_all_day, visibility,
	availability, user_id, source, created_at, updated_at`

// Create inserts a new event. A missing ID is assigned here.
func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Source == "" {
		event.Source = "local"
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Title,
		event.Date,
		event.StartTime,
		event.EndTime,
		event.Location,
		event.Description,
		marshalList(event.Attendees),
		marshalList(event.Reminders),
		orDefault(event.Recurring, models.RecurNone),
		orDefault(event.Timezone, models.DefaultTimezone),
		event.Color,
		event.IsAllDay,
		orDefault(event.Visibility, models.DefaultVisibility),
		orDefault(event.Availability, models.DefaultAvailability),
		event.UserID,
		event.Source,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to create event")
		return err
	}
	return nil
}

// GetByID retrieves an event by its ID
func (r *eventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		r.log.Error().Err(err).Str("event_id", id).Msg("Failed to get event by ID")
		return nil, err
	}
	return event, nil
}

// Update modifies an existing event
func (r *eventRepository) Update(ctx context.Context, id string, req *models.EventRequest) (*models.Event, error) {
	query := `
		UPDATE events
		SET title = ?, date = ?, start_time = ?, end_time = ?, location = ?,
			description = ?, attendees = ?, reminders = ?, recurring = ?,
			is_all_day = ?, visibility = ?, availability = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		req.Title,
		req.Date,
		req.StartTime,
		req.EndTime,
		req.Location,
		req.Description,
		marshalList(req.Attendees),
		marshalList(req.Reminders),
		orDefault(req.Recurring, models.RecurNone),
		req.IsAllDay,
		orDefault(req.Visibility, models.DefaultVisibility),
		orDefault(req.Availability, models.DefaultAvailability),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		r.log.Error().Err(err).Str("event_id", id).Msg("Failed to update event")
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrEventNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes an event from the database
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		r.log.Error().Err(err).Str("event_id", id).Msg("Failed to delete event")
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to get rows affected for event delete")
		return err
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// List returns events ordered by date and start time with pagination.
func (r *eventRepository) List(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date, start_time LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to list events")
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListByDate returns all events on a single calendar date, in stable order.
// The validator walks this set for conflict detection.
func (r *eventRepository) ListByDate(ctx context.Context, date string) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE date = ? ORDER BY start_time, id`
	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		r.log.Error().Err(err).Str("date", date).Msg("Failed to list events by date")
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListByUser returns all events owned by a user.
func (r *eventRepository) ListByUser(ctx context.Context, userID string) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = ? ORDER BY date, start_time`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list events by user")
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListAll returns every stored event, used by the ICS export.
func (r *eventRepository) ListAll(ctx context.Context) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date, start_time`)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to list all events")
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// Count returns the number of stored events.
func (r *eventRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var event models.Event
	var attendees, reminders string
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Date,
		&event.StartTime,
		&event.EndTime,
		&event.Location,
		&event.Description,
		&attendees,
		&reminders,
		&event.Recurring,
		&event.Timezone,
		&event.Color,
		&event.IsAllDay,
		&event.Visibility,
		&event.Availability,
		&event.UserID,
		&event.Source,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.Attendees = unmarshalList(attendees)
	event.Reminders = unmarshalList(reminders)
	return &event, nil
}

func collectEvents(rows *sql.Rows) ([]*models.Event, error) {
	events := []*models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func marshalList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func unmarshalList(raw string) []string {
	list := []string{}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &list)
	}
	return list
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
