package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/second-brain-be/internal/apperrors"
	"github.com/isdelr/second-brain-be/internal/metadata"
	"github.com/isdelr/second-brain-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Pagination defaults for item listing.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// NewItemInput carries the caller-supplied fields for item creation.
type NewItemInput struct {
	BrainID     string
	Title       string
	Type        string
	URL         string
	Content     string
	Description string
	Tags        []string
}

// ItemPatch carries the fields an update may overwrite; nil means "leave as is".
type ItemPatch struct {
	Title       *string
	URL         *string
	Content     *string
	Description *string
	Type        *string
	Tags        []string
}

// ItemFilters narrows an item listing.
type ItemFilters struct {
	BrainID string
	Type    string
	Tags    []string
	Search  string
}

// Pagination describes one page of a listing result.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ItemServiceProvider defines the interface for item services.
type ItemServiceProvider interface {
	CreateItem(ctx context.Context, userID string, input NewItemInput) (models.Item, error)
	ListItems(ctx context.Context, userID string, filters ItemFilters, page, limit int) ([]models.Item, Pagination, error)
	UpdateItem(ctx context.Context, userID, itemID string, patch ItemPatch) (models.Item, error)
	DeleteItem(ctx context.Context, userID, itemID string) error
}

// ItemService provides business logic for saved content items.
type ItemService struct {
	db        *sql.DB
	brains    BrainServiceProvider
	extractor metadata.Extractor
}

// NewItemService creates a new ItemService.
func NewItemService(db *sql.DB, brains BrainServiceProvider, extractor metadata.Extractor) *ItemService {
	return &ItemService{db: db, brains: brains, extractor: extractor}
}

// CreateItem validates the input, checks brain access, scrapes URL metadata
// (best-effort) and persists the item owned by userID.
func (s *ItemService) CreateItem(ctx context.Context, userID string, input NewItemInput) (models.Item, error) {
	if strings.TrimSpace(input.Title) == "" {
		return models.Item{}, apperrors.NewValidationError("title", "Title is required")
	}
	if !models.ValidItemType(input.Type) {
		return models.Item{}, apperrors.NewValidationError("type", "Invalid type")
	}
	if input.BrainID == "" {
		return models.Item{}, apperrors.NewValidationError("brainId", "Brain ID is required")
	}

	ok, err := s.brains.HasAccess(ctx, input.BrainID, userID)
	if err != nil {
		return models.Item{}, err
	}
	if !ok {
		return models.Item{}, apperrors.ErrNotFound
	}

	var meta *models.ItemMetadata
	if input.URL != "" {
		meta, err = s.extractor.Extract(ctx, input.URL)
		if err != nil {
			// Scrape failures never block creation.
			log.Debug().Err(err).Str("url", input.URL).Msg("metadata extraction failed")
			meta = nil
		}
	}

	description := input.Description
	if description == "" && meta != nil {
		description = meta.Description
	}

	now := time.Now().UTC()
	item := models.Item{
		ID:          uuid.New().String(),
		Title:       input.Title,
		URL:         input.URL,
		Content:     input.Content,
		Description: description,
		Type:        input.Type,
		Tags:        normalizeTags(input.Tags),
		UserID:      userID,
		BrainID:     input.BrainID,
		Metadata:    meta,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := item.PrepareForDB(); err != nil {
		return models.Item{}, err
	}

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO items(id, title, url, content, description, type, tags_json, metadata_json, user_id, brain_id, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return models.Item{}, err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, item.ID, item.Title, item.URL, item.Content, item.Description, item.Type,
		item.TagsJSON, item.MetadataJSON, item.UserID, item.BrainID, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// ListItems returns one page of the requester's items, newest-first. Listing
// is scoped strictly to user_id, so items in collaborated brains that belong
// to other members are not returned; only listBrains reflects collaboration.
func (s *ItemService) ListItems(ctx context.Context, userID string, filters ItemFilters, page, limit int) ([]models.Item, Pagination, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	where := "WHERE user_id = ?"
	args := []interface{}{userID}

	if filters.BrainID != "" {
		where += " AND brain_id = ?"
		args = append(args, filters.BrainID)
	}
	if filters.Type != "" {
		where += " AND type = ?"
		args = append(args, filters.Type)
	}
	if len(filters.Tags) > 0 {
		clauses := make([]string, 0, len(filters.Tags))
		for _, tag := range filters.Tags {
			clauses = append(clauses, "tags_json LIKE ?")
			args = append(args, `%"`+tag+`"%`)
		}
		where += " AND (" + strings.Join(clauses, " OR ") + ")"
	}
	if filters.Search != "" {
		where += " AND (title LIKE ? OR description LIKE ? OR content LIKE ?)"
		pattern := "%" + filters.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	var total int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM items "+where, args...)
	if err := row.Scan(&total); err != nil {
		return nil, Pagination{}, err
	}

	query := `SELECT id, title, url, content, description, type, tags_json, metadata_json, user_id, brain_id, created_at, updated_at
		FROM items ` + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Pagination{}, err
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, Pagination{}, err
	}

	pagination := Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}
	return items, pagination, nil
}

// UpdateItem overwrites the supplied fields on an item the requester owns.
func (s *ItemService) UpdateItem(ctx context.Context, userID, itemID string, patch ItemPatch) (models.Item, error) {
	if patch.Type != nil && !models.ValidItemType(*patch.Type) {
		return models.Item{}, apperrors.NewValidationError("type", "Invalid type")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Item{}, apperrors.NewValidationError("title", "Title is required")
	}

	set := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.URL != nil {
		set = append(set, "url = ?")
		args = append(args, *patch.URL)
	}
	if patch.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *patch.Content)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Type != nil {
		set = append(set, "type = ?")
		args = append(args, *patch.Type)
	}
	if patch.Tags != nil {
		tagged := models.Item{Tags: normalizeTags(patch.Tags)}
		if err := tagged.PrepareForDB(); err != nil {
			return models.Item{}, err
		}
		set = append(set, "tags_json = ?")
		args = append(args, tagged.TagsJSON)
	}

	args = append(args, itemID, userID)
	res, err := s.db.ExecContext(ctx,
		"UPDATE items SET "+strings.Join(set, ", ")+" WHERE id = ? AND user_id = ?", args...)
	if err != nil {
		return models.Item{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Item{}, err
	}
	if affected == 0 {
		return models.Item{}, apperrors.ErrNotFound
	}

	return s.getItem(ctx, userID, itemID)
}

// DeleteItem removes an item the requester owns.
func (s *ItemService) DeleteItem(ctx context.Context, userID, itemID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ? AND user_id = ?", itemID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *ItemService) getItem(ctx context.Context, userID, itemID string) (models.Item, error) {
	var item models.Item
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, url, content, description, type, tags_json, metadata_json, user_id, brain_id, created_at, updated_at
		FROM items WHERE id = ? AND user_id = ?`, itemID, userID)
	err := row.Scan(&item.ID, &item.Title, &item.URL, &item.Content, &item.Description, &item.Type,
		&item.TagsJSON, &item.MetadataJSON, &item.UserID, &item.BrainID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Item{}, apperrors.ErrNotFound
		}
		return models.Item{}, err
	}
	if err := item.PrepareForAPI(); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// scanItems reads item rows and unpacks their JSON columns.
func scanItems(rows *sql.Rows) ([]models.Item, error) {
	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Title, &item.URL, &item.Content, &item.Description, &item.Type,
			&item.TagsJSON, &item.MetadataJSON, &item.UserID, &item.BrainID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if err := item.PrepareForAPI(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// normalizeTags trims whitespace and drops empty entries, preserving order.
func normalizeTags(tags []string) []string {
	cleaned := []string{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}
