package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/calinvite/calinvite/internal/ai"
	"github.com/calinvite/calinvite/internal/models"
	"github.com/calinvite/calinvite/internal/parser"
	"github.com/calinvite/calinvite/internal/repository"
	"github.com/rs/zerolog"
)

// AssistantHandler backs the conversational endpoint. Messages are routed by
// intent keywords: scheduling phrases go through the parser chain, agenda
// questions query the store, and everything else gets usage help.
type AssistantHandler struct {
	repo  repository.EventRepository
	chain *ai.Chain
	log   *zerolog.Logger
}

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type ChatResponse struct {
	Intent     string                   `json:"intent"`
	Reply      string                   `json:"reply"`
	Event      *models.Event            `json:"event,omitempty"`
	Validation *models.ValidationResult `json:"validation,omitempty"`
	Events     []*models.Event          `json:"events,omitempty"`
}

var (
	createKeywords = []string{"schedule", "create", "add", "book", "set up", "remind me", "plan"}
	queryKeywords  = []string{"what", "when", "show", "list", "agenda", "do i have", "free"}
)

// NewAssistantHandler creates a new AssistantHandler
func NewAssistantHandler(repo repository.EventRepository, chain *ai.Chain, log *zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		repo:  repo,
		chain: chain,
		log:   log,
	}
}

// Chat handles one assistant message and returns a structured reply.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Message is required")
		return
	}

	switch detectIntent(req.Message) {
	case "create":
		h.handleCreate(w, r, req.Message)
	case "query":
		h.handleQuery(w, r, req.Message)
	default:
		RespondWithJSON(w, http.StatusOK, ChatResponse{
			Intent: "help",
			Reply: "I can schedule events from plain text, like \"Dentist tomorrow at 2pm\", " +
				"or answer questions like \"What do I have on Friday?\".",
		})
	}
}

func (h *AssistantHandler) handleCreate(w http.ResponseWriter, r *http.Request, message string) {
	event, err := h.chain.ParseEvent(r.Context(), message, time.Now().UTC())
	if err != nil {
		if errors.Is(err, parser.ErrEmptyInput) {
			RespondWithError(w, http.StatusBadRequest, "Message is required")
			return
		}
		h.log.Error().Err(err).Msg("Assistant parse failed")
		RespondWithError(w, http.StatusInternalServerError, "Failed to understand the event")
		return
	}

	sameDay, err := h.repo.ListByDate(r.Context(), event.Date)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to check for conflicts")
		return
	}
	validation := parser.Validate(event, sameDay)

	reply := fmt.Sprintf("Here's what I understood: %q on %s", event.Title, event.Date)
	if !event.IsAllDay {
		reply += " at " + event.StartTime
	}
	if len(validation.Conflicts) > 0 {
		reply += fmt.Sprintf(". Heads up: it overlaps with %d existing event(s).", len(validation.Conflicts))
	} else {
		reply += ". Save it when you're ready."
	}

	RespondWithJSON(w, http.StatusOK, ChatResponse{
		Intent:     "create",
		Reply:      reply,
		Event:      event,
		Validation: validation,
	})
}

func (h *AssistantHandler) handleQuery(w http.ResponseWriter, r *http.Request, message string) {
	// Reuse the date extractor to find which day the question is about;
	// with no date expression it falls back to today.
	date := time.Now().UTC().Format("2006-01-02")
	if event, err := h.chain.ParseEvent(r.Context(), message, time.Now().UTC()); err == nil && event.Date != "" {
		date = event.Date
	}

	list, err := h.repo.ListByDate(r.Context(), date)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	reply := fmt.Sprintf("You have %d event(s) on %s.", len(list), date)
	if len(list) == 0 {
		reply = "Your calendar is clear on " + date + "."
	}

	RespondWithJSON(w, http.StatusOK, ChatResponse{
		Intent: "query",
		Reply:  reply,
		Events: list,
	})
}

func detectIntent(message string) string {
	lower := strings.ToLower(message)
	for _, kw := range queryKeywords {
		if strings.Contains(lower, kw) {
			return "query"
		}
	}
	for _, kw := range createKeywords {
		if strings.Contains(lower, kw) {
			return "create"
		}
	}
	// A message with a time expression but no verb is still a scheduling
	// request ("Dentist tomorrow at 2pm").
	for _, kw := range []string{"tomorrow", "today", "tonight", "next ", " at ", "pm", "am", "every "} {
		if strings.Contains(lower, kw) {
			return "create"
		}
	}
	return "help"
}
