package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/isdelr/second-brain-be/internal/apperrors"
	"github.com/isdelr/second-brain-be/internal/auth"
	"github.com/isdelr/second-brain-be/internal/models"
	"github.com/isdelr/second-brain-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	service   services.UserServiceProvider
	verifier  auth.GoogleVerifier
	jwtSecret []byte
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider, verifier auth.GoogleVerifier, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{service: service, verifier: verifier, jwtSecret: jwtSecret}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GooglePayload carries the Google-issued ID token.
type GooglePayload struct {
	Token string `json:"token" validate:"required"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := checkPayload(payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeError(w, err)
		return
	}

	h.respondWithToken(w, user, http.StatusCreated)
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := checkPayload(payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, err)
		return
	}

	h.respondWithToken(w, user, http.StatusOK)
}

// GoogleLogin verifies a Google ID token and signs the matching user in,
// creating or linking the account as needed.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var payload GooglePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := checkPayload(payload); err != nil {
		writeError(w, err)
		return
	}

	ident, err := h.verifier.Verify(r.Context(), payload.Token)
	if err != nil {
		log.Warn().Err(err).Msg("Google token verification failed")
		writeError(w, apperrors.ErrInvalidToken)
		return
	}

	user, err := h.service.LoginWithGoogle(r.Context(), ident)
	if err != nil {
		log.Error().Err(err).Str("email", ident.Email).Msg("Google login failed")
		writeError(w, err)
		return
	}

	h.respondWithToken(w, user, http.StatusOK)
}

// GetMe retrieves the currently authenticated user from the token.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User from token not found in DB")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, user models.User, status int) {
	token, err := auth.GenerateJWT(user, h.jwtSecret)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeError(w, err)
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(auth.TokenValidity),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	writeJSON(w, status, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
