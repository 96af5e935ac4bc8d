package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/calinvite/calinvite/internal/models"
	"github.com/rs/zerolog"
)

// OllamaStrategy parses events with a local Ollama model. It implements
// ParseStrategy; responses that are not valid JSON or carry malformed
// date/time fields are rejected so the chain can fall back.
type OllamaStrategy struct {
	host   string
	model  string
	client *http.Client
	log    zerolog.Logger
}

func NewOllamaStrategy(host, model string, log zerolog.Logger) *OllamaStrategy {
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	if model == "" {
		model = "phi"
	}
	return &OllamaStrategy{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{},
		log:    log,
	}
}

func (s *OllamaStrategy) Name() string { return "ollama:" + s.model }

// Available reports whether the Ollama server answers and knows the model.
func (s *OllamaStrategy) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}
	for _, m := range tags.Models {
		if strings.HasPrefix(m.Name, s.model) {
			return true
		}
	}
	return false
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (s *OllamaStrategy) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, respBody)
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if gr.Error != "" {
		return "", fmt.Errorf("ollama error: %s", gr.Error)
	}
	return gr.Response, nil
}

// parsedEventDTO is the JSON shape the model is asked to produce.
type parsedEventDTO struct {
	Title     string   `json:"title"`
	Date      string   `json:"date"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Location  string   `json:"location"`
	Attendees []string `json:"attendees"`
	Recurring string   `json:"recurring"`
	IsAllDay  bool     `json:"isAllDay"`
}

func (s *OllamaStrategy) ParseEvent(ctx context.Context, text string, now time.Time) (*models.Event, error) {
	raw, err := s.generate(ctx, buildParsePrompt(text, now))
	if err != nil {
		return nil, err
	}

	var dto parsedEventDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return sanitizeParsed(dto)
}

func buildParsePrompt(text string, now time.Time) string {
	return fmt.Sprintf(`You are a calendar assistant. Today is %s (%s).
Extract the event described in the text below into JSON with exactly these
keys: title, date (YYYY-MM-DD), startTime (HH:MM 24h or empty), endTime,
location, attendees (array of emails), recurring (none/daily/weekly/monthly/yearly/weekdays),
isAllDay (boolean). Resolve relative dates forward from today. Respond with JSON only.

Text: %q`, now.Format("2006-01-02"), now.Weekday(), text)
}

var (
	dateFieldRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeFieldRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// sanitizeParsed enforces the wire contract on model output and fills the
// same defaults the deterministic parser applies.
func sanitizeParsed(dto parsedEventDTO) (*models.Event, error) {
	if dto.Date != "" {
		if !dateFieldRe.MatchString(dto.Date) {
			return nil, fmt.Errorf("model returned malformed date %q", dto.Date)
		}
		if _, err := time.Parse("2006-01-02", dto.Date); err != nil {
			return nil, fmt.Errorf("model returned invalid date %q", dto.Date)
		}
	}
	for _, clock := range []string{dto.StartTime, dto.EndTime} {
		if clock != "" && !timeFieldRe.MatchString(clock) {
			return nil, fmt.Errorf("model returned malformed time %q", clock)
		}
	}

	title := strings.TrimSpace(dto.Title)
	if title == "" {
		title = "Untitled Event"
	}
	recurring := dto.Recurring
	switch recurring {
	case models.RecurNone, models.RecurDaily, models.RecurWeekly,
		models.RecurMonthly, models.RecurYearly, models.RecurWeekdays:
	default:
		recurring = models.RecurNone
	}
	attendees := dto.Attendees
	if attendees == nil {
		attendees = []string{}
	}

	return &models.Event{
		Title:        title,
		Date:         dto.Date,
		StartTime:    dto.StartTime,
		EndTime:      dto.EndTime,
		Location:     strings.TrimSpace(dto.Location),
		Attendees:    attendees,
		Recurring:    recurring,
		IsAllDay:     dto.IsAllDay || (dto.Date != "" && dto.StartTime == ""),
		Reminders:    []string{models.DefaultReminder},
		Timezone:     models.DefaultTimezone,
		Color:        models.DefaultColor,
		Visibility:   models.DefaultVisibility,
		Availability: models.DefaultAvailability,
	}, nil
}
