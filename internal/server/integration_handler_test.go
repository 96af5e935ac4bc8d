package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/calinvite/calinvite/internal/ai"
	"github.com/calinvite/calinvite/internal/config"
	"github.com/calinvite/calinvite/internal/events"
	"github.com/calinvite/calinvite/internal/integrations"
	"github.com/rs/zerolog"
)

func newIntegrationServer(cfg *config.Config) *Server {
	logger := zerolog.Nop()
	chain := ai.NewChain(logger, time.Second)
	manager := integrations.NewManager(cfg, logger)
	return New(cfg, nil, newMemoryRepo(), chain, events.NoopNotifier{}, manager, &logger)
}

func TestListConnectionsDefaultsDisconnected(t *testing.T) {
	srv := newIntegrationServer(&config.Config{Port: "0"})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/integrations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	var conns []integrations.Connection
	if err := json.Unmarshal(body["connections"], &conns); err != nil {
		t.Fatalf("decode connections: %v", err)
	}
	if len(conns) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(conns))
	}
	for _, c := range conns {
		if c.Connected {
			t.Errorf("provider %s should start disconnected", c.Provider)
		}
	}
}

func TestConnectUnconfiguredProvider(t *testing.T) {
	srv := newIntegrationServer(&config.Config{Port: "0"})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/integrations/google/connect", nil)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("got %d, want 501 with no client ID", rec.Code)
	}
}

func TestConnectConfiguredProviderRedirects(t *testing.T) {
	srv := newIntegrationServer(&config.Config{
		Port:              "0",
		GoogleClientID:    "client-id",
		GoogleRedirectURL: "http://localhost:7070/api/v1/integrations/google/callback",
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/integrations/google/connect", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("got %d, want redirect", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc == "" {
		t.Error("redirect has no Location header")
	}
}

func TestUnknownProvider(t *testing.T) {
	srv := newIntegrationServer(&config.Config{Port: "0"})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/integrations/fastmail/connect", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404 for unknown provider", rec.Code)
	}
}

func TestCallbackMissingCode(t *testing.T) {
	srv := newIntegrationServer(&config.Config{Port: "0"})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/integrations/google/callback", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400 without code", rec.Code)
	}
}
