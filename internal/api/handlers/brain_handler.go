package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/second-brain-be/internal/auth"
	"github.com/isdelr/second-brain-be/internal/models"
	"github.com/isdelr/second-brain-be/internal/services"
	"github.com/rs/zerolog/log"
)

// BrainHandler handles HTTP requests for brains and sharing.
type BrainHandler struct {
	service services.BrainServiceProvider
}

// NewBrainHandler creates a new BrainHandler.
func NewBrainHandler(service services.BrainServiceProvider) *BrainHandler {
	return &BrainHandler{service: service}
}

// CreateBrainPayload defines the structure for brain creation requests.
type CreateBrainPayload struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Create handles the request to create a new brain.
func (h *BrainHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload CreateBrainPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := checkPayload(payload); err != nil {
		writeError(w, err)
		return
	}

	brain, err := h.service.CreateBrain(r.Context(), claims.UserID, payload.Name, payload.Description)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to create brain")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, brain)
}

// GetAll handles the request to list the caller's owned and collaborated brains.
func (h *BrainHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	brains, err := h.service.ListBrains(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to list brains")
		writeError(w, err)
		return
	}
	if brains == nil {
		brains = []models.Brain{}
	}

	writeJSON(w, http.StatusOK, brains)
}

// Share handles the owner-only request to publish a brain behind a token URL.
func (h *BrainHandler) Share(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	brainID := chi.URLParam(r, "id")
	token, err := h.service.ShareBrain(r.Context(), brainID, claims.UserID)
	if err != nil {
		log.Warn().Err(err).Str("brain_id", brainID).Str("user_id", claims.UserID).Msg("Failed to share brain")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"shareUrl": "/shared/" + token})
}

// GetShared resolves a public share token. Unauthenticated.
func (h *BrainHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	brain, items, err := h.service.ResolveShared(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"brain": brain,
		"items": items,
	})
}
