package server

import (
	"errors"
	"net/http"

	"github.com/calinvite/calinvite/internal/integrations"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// IntegrationHandler exposes the external calendar provider endpoints.
type IntegrationHandler struct {
	manager *integrations.Manager
	log     *zerolog.Logger
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(manager *integrations.Manager, log *zerolog.Logger) *IntegrationHandler {
	return &IntegrationHandler{
		manager: manager,
		log:     log,
	}
}

// ListConnections reports the state of every provider.
func (h *IntegrationHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"connections": h.manager.Connections(),
	})
}

// Connect starts the OAuth flow by redirecting to the provider consent page.
func (h *IntegrationHandler) Connect(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]

	state := uuid.New().String()
	url, err := h.manager.AuthURL(provider, state)
	if err != nil {
		h.respondProviderError(w, provider, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// Callback completes the OAuth flow with the authorization code.
func (h *IntegrationHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]

	code := r.URL.Query().Get("code")
	if code == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	if err := h.manager.Exchange(r.Context(), provider, code); err != nil {
		if errors.Is(err, integrations.ErrUnknownProvider) || errors.Is(err, integrations.ErrNotConfigured) {
			h.respondProviderError(w, provider, err)
			return
		}
		RespondWithError(w, http.StatusBadGateway, "Provider token exchange failed")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "connected",
		"provider": provider,
	})
}

// Disconnect drops the provider connection.
func (h *IntegrationHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]

	if err := h.manager.Disconnect(provider); err != nil {
		h.respondProviderError(w, provider, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "disconnected",
		"provider": provider,
	})
}

func (h *IntegrationHandler) respondProviderError(w http.ResponseWriter, provider string, err error) {
	switch {
	case errors.Is(err, integrations.ErrUnknownProvider):
		RespondWithError(w, http.StatusNotFound, "Unknown provider: "+provider)
	case errors.Is(err, integrations.ErrNotConfigured):
		RespondWithError(w, http.StatusNotImplemented, "Provider is not configured: "+provider)
	default:
		h.log.Error().Err(err).Str("provider", provider).Msg("Integration request failed")
		RespondWithError(w, http.StatusInternalServerError, "Integration request failed")
	}
}
