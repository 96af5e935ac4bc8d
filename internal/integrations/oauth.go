// Package integrations wires external calendar providers over OAuth2. Tokens
// are held in memory only; syncing against the provider APIs is a later step.
package integrations

import (
	"context"
	"errors"
	"sync"

	"github.com/calinvite/calinvite/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

const (
	ProviderGoogle  = "google"
	ProviderOutlook = "outlook"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrNotConfigured is returned when the provider's OAuth client
	// credentials are missing from the environment.
	ErrNotConfigured = errors.New("provider not configured")
)

// Connection describes the sync state for one provider.
type Connection struct {
	Provider  string `json:"provider"`
	Connected bool   `json:"connected"`
}

// Manager holds the OAuth configs and in-memory connection state.
type Manager struct {
	configs map[string]*oauth2.Config
	log     zerolog.Logger

	mu     sync.RWMutex
	tokens map[string]*oauth2.Token
}

// NewManager builds provider configs from the environment. Providers with no
// client ID stay registered but report ErrNotConfigured on use.
func NewManager(cfg *config.Config, log zerolog.Logger) *Manager {
	return &Manager{
		configs: map[string]*oauth2.Config{
			ProviderGoogle: {
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.GoogleRedirectURL,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"https://www.googleapis.com/auth/calendar.readonly"},
			},
			ProviderOutlook: {
				ClientID:     cfg.OutlookClientID,
				ClientSecret: cfg.OutlookClientSecret,
				RedirectURL:  cfg.OutlookRedirectURL,
				Endpoint:     microsoft.AzureADEndpoint("common"),
				Scopes:       []string{"Calendars.Read", "offline_access"},
			},
		},
		log:    log,
		tokens: make(map[string]*oauth2.Token),
	}
}

// AuthURL returns the provider's consent page URL for the given state.
func (m *Manager) AuthURL(provider, state string) (string, error) {
	cfg, ok := m.configs[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	if cfg.ClientID == "" {
		return "", ErrNotConfigured
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// Exchange trades the authorization code for a token and stores it.
func (m *Manager) Exchange(ctx context.Context, provider, code string) error {
	cfg, ok := m.configs[provider]
	if !ok {
		return ErrUnknownProvider
	}
	if cfg.ClientID == "" {
		return ErrNotConfigured
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		m.log.Error().Err(err).Str("provider", provider).Msg("OAuth code exchange failed")
		return err
	}

	m.mu.Lock()
	m.tokens[provider] = token
	m.mu.Unlock()

	m.log.Info().Str("provider", provider).Msg("Provider connected")
	return nil
}

// Disconnect drops the stored token for a provider.
func (m *Manager) Disconnect(provider string) error {
	if _, ok := m.configs[provider]; !ok {
		return ErrUnknownProvider
	}
	m.mu.Lock()
	delete(m.tokens, provider)
	m.mu.Unlock()
	return nil
}

// Connections reports the state of every known provider.
func (m *Manager) Connections() []Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conns := []Connection{}
	for _, provider := range []string{ProviderGoogle, ProviderOutlook} {
		_, connected := m.tokens[provider]
		conns = append(conns, Connection{Provider: provider, Connected: connected})
	}
	return conns
}
