package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/calinvite/calinvite/internal/ai"
	"github.com/calinvite/calinvite/internal/config"
	"github.com/calinvite/calinvite/internal/events"
	"github.com/calinvite/calinvite/internal/integrations"
	"github.com/calinvite/calinvite/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

var validate = validator.New()

type Server struct {
	Server *http.Server
	log    *zerolog.Logger
	db     *sql.DB

	eventAPI       *EventHandler
	assistantAPI   *AssistantHandler
	authAPI        *AuthHandler
	integrationAPI *IntegrationHandler
}

func New(cfg *config.Config, db *sql.DB, repo repository.EventRepository, chain *ai.Chain, notifier events.Notifier, manager *integrations.Manager, log *zerolog.Logger) *Server {
	s := &Server{
		Server: &http.Server{
			Addr:         ":" + cfg.Port,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		db:             db,
		log:            log,
		eventAPI:       NewEventHandler(repo, chain, notifier, log),
		assistantAPI:   NewAssistantHandler(repo, chain, log),
		authAPI:        NewAuthHandler(cfg.JWTSecret, cfg.JWTExpiry, log),
		integrationAPI: NewIntegrationHandler(manager, log),
	}

	r := mux.NewRouter()
	s.setupRoutes(r)

	// The web client runs on a different origin during development
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	s.Server.Handler = c.Handler(r)

	return s
}

func (s *Server) setupRoutes(r *mux.Router) {
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	// Health check endpoint
	r.HandleFunc("/health", s.healthCheck).Methods("GET")

	// Auth routes stay outside the token check
	r.HandleFunc("/api/v1/auth/login", s.authAPI.Login).Methods("POST")

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.authAPI.Middleware)

	api.HandleFunc("/auth/me", s.authAPI.Me).Methods("GET")

	// Events routes
	eventsRouter := api.PathPrefix("/events").Subrouter()
	eventsRouter.HandleFunc("", s.eventAPI.ListEvents).Methods("GET")
	eventsRouter.HandleFunc("", s.eventAPI.CreateEvent).Methods("POST")
	eventsRouter.HandleFunc("/parse", s.eventAPI.ParseEvent).Methods("POST")
	eventsRouter.HandleFunc("/{id}", s.eventAPI.GetEvent).Methods("GET")
	eventsRouter.HandleFunc("/{id}", s.eventAPI.UpdateEvent).Methods("PUT")
	eventsRouter.HandleFunc("/{id}", s.eventAPI.DeleteEvent).Methods("DELETE")
	eventsRouter.HandleFunc("/{id}/occurrences", s.eventAPI.GetOccurrences).Methods("GET")

	// Calendar export
	api.HandleFunc("/export/calendar.ics", s.eventAPI.ExportCalendar).Methods("GET")

	// Assistant routes
	api.HandleFunc("/assistant/chat", s.assistantAPI.Chat).Methods("POST")

	// Provider integration routes
	integrationsRouter := api.PathPrefix("/integrations").Subrouter()
	integrationsRouter.HandleFunc("", s.integrationAPI.ListConnections).Methods("GET")
	integrationsRouter.HandleFunc("/{provider}/connect", s.integrationAPI.Connect).Methods("GET")
	integrationsRouter.HandleFunc("/{provider}/callback", s.integrationAPI.Callback).Methods("GET")
	integrationsRouter.HandleFunc("/{provider}", s.integrationAPI.Disconnect).Methods("DELETE")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("address", s.Server.Addr).Msg("Starting server")
	return s.Server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info().Msg("Shutting down server")
	return s.Server.Shutdown(ctx)
}

// loggingMiddleware logs all incoming requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer to capture the status code
		rw := &responseWriter{w, http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Str("duration", duration.String()).
			Msg("Request processed")
	})
}

// recoveryMiddleware converts panics into 500 responses
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("Recovered from panic")
				RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.db == nil {
		s.log.Error().Msg("Database is not initialized")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unhealthy","error":"database not initialized"}`))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.log.Error().Err(err).Msg("Database health check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unhealthy","error":"database connection failed"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
