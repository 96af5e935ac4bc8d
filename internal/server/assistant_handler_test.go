package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/calinvite/calinvite/internal/models"
)

func chat(t *testing.T, srv *Server, message string) (int, ChatResponse) {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/assistant/chat", ChatRequest{Message: message})
	var resp ChatResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode chat response: %v\n%s", err, rec.Body.String())
		}
	}
	return rec.Code, resp
}

func TestChatCreateIntent(t *testing.T) {
	srv := newTestServer(newMemoryRepo())

	code, resp := chat(t, srv, "Schedule dentist tomorrow at 2pm")
	if code != http.StatusOK {
		t.Fatalf("got %d", code)
	}
	if resp.Intent != "create" {
		t.Fatalf("intent: got %q", resp.Intent)
	}
	if resp.Event == nil || resp.Event.StartTime != "14:00" {
		t.Errorf("unexpected event: %+v", resp.Event)
	}
	if resp.Validation == nil {
		t.Error("create reply missing validation")
	}
}

func TestChatQueryIntent(t *testing.T) {
	repo := newMemoryRepo()
	srv := newTestServer(repo)

	code, resp := chat(t, srv, "What do I have today?")
	if code != http.StatusOK {
		t.Fatalf("got %d", code)
	}
	if resp.Intent != "query" {
		t.Fatalf("intent: got %q", resp.Intent)
	}
	if !strings.Contains(resp.Reply, "clear") {
		t.Errorf("expected an empty-calendar reply, got %q", resp.Reply)
	}

	today := time.Now().UTC().Format("2006-01-02")
	if err := repo.Create(context.Background(), &models.Event{Title: "Standup", Date: today}); err != nil {
		t.Fatal(err)
	}
	_, resp = chat(t, srv, "What do I have today?")
	if len(resp.Events) != 1 {
		t.Errorf("expected 1 event in reply, got %d", len(resp.Events))
	}
}

func TestChatHelpIntent(t *testing.T) {
	srv := newTestServer(newMemoryRepo())

	code, resp := chat(t, srv, "hello")
	if code != http.StatusOK {
		t.Fatalf("got %d", code)
	}
	if resp.Intent != "help" {
		t.Fatalf("intent: got %q", resp.Intent)
	}
	if resp.Reply == "" {
		t.Error("help reply is empty")
	}
}

func TestChatBareTimeExpressionCreates(t *testing.T) {
	srv := newTestServer(newMemoryRepo())

	code, resp := chat(t, srv, "Dentist tomorrow at 2pm")
	if code != http.StatusOK {
		t.Fatalf("got %d", code)
	}
	if resp.Intent != "create" {
		t.Fatalf("intent: got %q", resp.Intent)
	}
}

func TestChatEmptyMessage(t *testing.T) {
	srv := newTestServer(newMemoryRepo())

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/assistant/chat", ChatRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestChatCreateMentionsConflicts(t *testing.T) {
	repo := newMemoryRepo()
	srv := newTestServer(repo)

	doRequest(t, srv, http.MethodPost, "/api/v1/events", models.EventRequest{
		Title: "Standup", Date: "2025-06-13", StartTime: "09:00", EndTime: "10:00",
	})

	// Conflicts only count on the same date, so reuse the stored one.
	code, resp := chat(t, srv, "Schedule review on 2025-06-13 at 9am")
	if code != http.StatusOK {
		t.Fatalf("got %d", code)
	}
	if resp.Intent != "create" || resp.Validation == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Validation.Conflicts) == 0 {
		t.Error("expected a conflict in the validation report")
	}
}
