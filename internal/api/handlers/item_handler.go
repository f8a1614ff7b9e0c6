package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/second-brain-be/internal/auth"
	"github.com/isdelr/second-brain-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ItemHandler handles HTTP requests for saved content items.
type ItemHandler struct {
	service services.ItemServiceProvider
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service services.ItemServiceProvider) *ItemHandler {
	return &ItemHandler{service: service}
}

// CreateItemPayload defines the structure for item creation requests.
type CreateItemPayload struct {
	Title       string   `json:"title" validate:"required"`
	Type        string   `json:"type" validate:"required,oneof=link article video note"`
	BrainID     string   `json:"brainId" validate:"required"`
	URL         string   `json:"url"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// UpdateItemPayload defines the structure for item update requests; absent
// fields are left untouched.
type UpdateItemPayload struct {
	Title       *string  `json:"title"`
	URL         *string  `json:"url"`
	Content     *string  `json:"content"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	Tags        []string `json:"tags"`
}

// Create handles the request to save a new item.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload CreateItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := checkPayload(payload); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.service.CreateItem(r.Context(), claims.UserID, services.NewItemInput{
		BrainID:     payload.BrainID,
		Title:       payload.Title,
		Type:        payload.Type,
		URL:         payload.URL,
		Content:     payload.Content,
		Description: payload.Description,
		Tags:        payload.Tags,
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Str("brain_id", payload.BrainID).Msg("Failed to create item")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// GetAll handles the request to list, filter, search and paginate the
// caller's items.
func (h *ItemHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	filters := services.ItemFilters{
		BrainID: q.Get("brainId"),
		Type:    q.Get("type"),
		Search:  q.Get("search"),
	}
	if tags := q.Get("tags"); tags != "" {
		filters.Tags = strings.Split(tags, ",")
	}

	page := intQuery(q.Get("page"), services.DefaultPage)
	limit := intQuery(q.Get("limit"), services.DefaultLimit)

	items, pagination, err := h.service.ListItems(r.Context(), claims.UserID, filters, page, limit)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to list items")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":      items,
		"pagination": pagination,
	})
}

// Update handles the request to overwrite fields of an owned item.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload UpdateItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	itemID := chi.URLParam(r, "id")
	item, err := h.service.UpdateItem(r.Context(), claims.UserID, itemID, services.ItemPatch{
		Title:       payload.Title,
		URL:         payload.URL,
		Content:     payload.Content,
		Description: payload.Description,
		Type:        payload.Type,
		Tags:        payload.Tags,
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Str("item_id", itemID).Msg("Failed to update item")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Delete handles the request to delete an owned item.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	itemID := chi.URLParam(r, "id")
	if err := h.service.DeleteItem(r.Context(), claims.UserID, itemID); err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Str("item_id", itemID).Msg("Failed to delete item")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
