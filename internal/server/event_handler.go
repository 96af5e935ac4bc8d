package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/calinvite/calinvite/internal/ai"
	"github.com/calinvite/calinvite/internal/events"
	"github.com/calinvite/calinvite/internal/ics"
	"github.com/calinvite/calinvite/internal/models"
	"github.com/calinvite/calinvite/internal/parser"
	"github.com/calinvite/calinvite/internal/repository"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	defaultListLimit       = 100
	defaultOccurrenceCount = 10
	maxOccurrenceCount     = 365
)

// EventHandler handles HTTP requests related to calendar events
type EventHandler struct {
	repo     repository.EventRepository
	chain    *ai.Chain
	notifier events.Notifier
	log      *zerolog.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(repo repository.EventRepository, chain *ai.Chain, notifier events.Notifier, log *zerolog.Logger) *EventHandler {
	return &EventHandler{
		repo:     repo,
		chain:    chain,
		notifier: notifier,
		log:      log,
	}
}

// ListEvents returns stored events, optionally filtered to a single date.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if date := r.URL.Query().Get("date"); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		list, err := h.repo.ListByDate(r.Context(), date)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to list events")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]interface{}{"events": list})
		return
	}

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		list, err := h.repo.ListByUser(r.Context(), userID)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to list events")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]interface{}{"events": list})
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	list, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"events": list})
}

// CreateEvent stores a new event and returns it with its validation report.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		h.log.Error().Err(err).Msg("Validation failed")
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	event := eventFromRequest(&req)

	sameDay, err := h.repo.ListByDate(r.Context(), event.Date)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to check for conflicts")
		return
	}
	validation := parser.Validate(event, sameDay)

	if err := h.repo.Create(r.Context(), event); err != nil {
		h.log.Error().Err(err).Msg("Failed to create event")
		RespondWithError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	if err := h.notifier.PublishEventCreated(r.Context(), event); err != nil {
		h.log.Warn().Err(err).Str("event_id", event.ID).Msg("Notification publish failed")
	}

	RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"event":      event,
		"validation": validation,
	})
}

// ParseEvent turns natural language text into an event preview. Nothing is
// stored; the client reviews the validation report and then calls CreateEvent.
func (h *EventHandler) ParseEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.chain.ParseEvent(r.Context(), req.Text, time.Now().UTC())
	if err != nil {
		if errors.Is(err, parser.ErrEmptyInput) {
			RespondWithError(w, http.StatusBadRequest, "Text is required")
			return
		}
		h.log.Error().Err(err).Msg("Failed to parse event text")
		RespondWithError(w, http.StatusInternalServerError, "Failed to parse event")
		return
	}

	sameDay, err := h.repo.ListByDate(r.Context(), event.Date)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to check for conflicts")
		return
	}
	validation := parser.Validate(event, sameDay)

	if err := h.notifier.PublishEventParsed(r.Context(), event); err != nil {
		h.log.Warn().Err(err).Msg("Notification publish failed")
	}

	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"event":      event,
		"validation": validation,
	})
}

// GetEvent retrieves an event by ID
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	event, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.log.Error().Err(err).Str("event_id", id).Msg("Failed to get event")
		RespondWithError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"event": event})
}

// UpdateEvent modifies an existing event
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		h.log.Error().Err(err).Msg("Validation failed")
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.repo.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.log.Error().Err(err).Str("event_id", id).Msg("Failed to update event")
		RespondWithError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}

	if err := h.notifier.PublishEventUpdated(r.Context(), event); err != nil {
		h.log.Warn().Err(err).Str("event_id", id).Msg("Notification publish failed")
	}

	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"event": event})
}

// DeleteEvent removes an event
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.log.Error().Err(err).Str("event_id", id).Msg("Failed to delete event")
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}

	if err := h.notifier.PublishEventDeleted(r.Context(), id); err != nil {
		h.log.Warn().Err(err).Str("event_id", id).Msg("Notification publish failed")
	}

	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}

// GetOccurrences expands a recurring event into its next instances.
func (h *EventHandler) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	count := defaultOccurrenceCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxOccurrenceCount {
			RespondWithError(w, http.StatusBadRequest, "Invalid count")
			return
		}
		count = n
	}

	event, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}

	occurrences, err := ics.Expand(event, count)
	if err != nil {
		h.log.Error().Err(err).Str("event_id", id).Msg("Failed to expand occurrences")
		RespondWithError(w, http.StatusInternalServerError, "Failed to expand occurrences")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"eventId":     event.ID,
		"recurring":   event.Recurring,
		"occurrences": occurrences,
	})
}

// ExportCalendar serves the whole calendar as an iCalendar document.
func (h *EventHandler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListAll(r.Context())
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	payload, err := ics.Export(list)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to serialize calendar")
		RespondWithError(w, http.StatusInternalServerError, "Failed to export calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calinvite.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(payload))
}

// eventFromRequest builds a full event from a request payload, filling the
// same defaults the parser applies.
func eventFromRequest(req *models.EventRequest) *models.Event {
	event := &models.Event{
		Title:        req.Title,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Location:     req.Location,
		Description:  req.Description,
		Attendees:    req.Attendees,
		Reminders:    req.Reminders,
		Recurring:    req.Recurring,
		IsAllDay:     req.IsAllDay,
		Visibility:   req.Visibility,
		Availability: req.Availability,
		Timezone:     models.DefaultTimezone,
		Color:        models.DefaultColor,
		Source:       "local",
	}
	if event.StartTime == "" {
		event.IsAllDay = true
	}
	if event.Recurring == "" {
		event.Recurring = models.RecurNone
	}
	if event.Visibility == "" {
		event.Visibility = models.DefaultVisibility
	}
	if event.Availability == "" {
		event.Availability = models.DefaultAvailability
	}
	if len(event.Reminders) == 0 {
		event.Reminders = []string{models.DefaultReminder}
	}
	if event.Attendees == nil {
		event.Attendees = []string{}
	}
	return event
}
