package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/second-brain-be/internal/apperrors"
	"github.com/isdelr/second-brain-be/internal/models"
)

// SharedItemLimit caps how many items a public share page returns.
const SharedItemLimit = 50

// BrainServiceProvider defines the interface for brain services.
type BrainServiceProvider interface {
	CreateBrain(ctx context.Context, userID, name, description string) (models.Brain, error)
	ListBrains(ctx context.Context, userID string) ([]models.Brain, error)
	HasAccess(ctx context.Context, brainID, userID string) (bool, error)
	AddCollaborator(ctx context.Context, brainID, userID string) error
	ShareBrain(ctx context.Context, brainID, requesterID string) (string, error)
	ResolveShared(ctx context.Context, token string) (models.SharedBrain, []models.Item, error)
}

// BrainService provides business logic for brains and sharing.
type BrainService struct {
	db *sql.DB
}

// NewBrainService creates a new BrainService.
func NewBrainService(db *sql.DB) *BrainService {
	return &BrainService{db: db}
}

// CreateBrain creates a new brain owned by userID.
func (s *BrainService) CreateBrain(ctx context.Context, userID, name, description string) (models.Brain, error) {
	now := time.Now().UTC()
	brain := models.Brain{
		ID:            uuid.New().String(),
		Name:          name,
		Description:   description,
		UserID:        userID,
		Collaborators: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	stmt, err := s.db.PrepareContext(ctx,
		"INSERT INTO brains(id, name, description, user_id, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.Brain{}, err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, brain.ID, brain.Name, brain.Description, brain.UserID, brain.CreatedAt, brain.UpdatedAt)
	if err != nil {
		return models.Brain{}, err
	}
	return brain, nil
}

// ListBrains retrieves every brain userID owns or collaborates on, newest-first.
func (s *BrainService) ListBrains(ctx context.Context, userID string) ([]models.Brain, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT b.id, b.name, b.description, b.user_id, b.is_public, b.share_token, b.created_at, b.updated_at
		FROM brains b
		LEFT JOIN brain_collaborators c ON c.brain_id = b.id
		WHERE b.user_id = ? OR c.user_id = ?
		ORDER BY b.created_at DESC`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brains []models.Brain
	for rows.Next() {
		var brain models.Brain
		if err := rows.Scan(&brain.ID, &brain.Name, &brain.Description, &brain.UserID, &brain.IsPublic,
			&brain.ShareToken, &brain.CreatedAt, &brain.UpdatedAt); err != nil {
			return nil, err
		}
		brains = append(brains, brain)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range brains {
		collaborators, err := s.collaborators(ctx, brains[i].ID)
		if err != nil {
			return nil, err
		}
		brains[i].Collaborators = collaborators
	}
	return brains, nil
}

// HasAccess reports whether userID may use brainID: owner or collaborator.
func (s *BrainService) HasAccess(ctx context.Context, brainID, userID string) (bool, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM brains b
		LEFT JOIN brain_collaborators c ON c.brain_id = b.id AND c.user_id = ?
		WHERE b.id = ? AND (b.user_id = ? OR c.user_id IS NOT NULL)`,
		userID, brainID, userID)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddCollaborator grants userID read/create access to brainID. There is no
// route exposing this; it exists for direct administration.
func (s *BrainService) AddCollaborator(ctx context.Context, brainID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO brain_collaborators(brain_id, user_id) VALUES(?, ?)", brainID, userID)
	return err
}

// ShareBrain marks the brain public and issues a fresh share token. Owner
// only; a re-share replaces the previous token, silently breaking old links.
func (s *BrainService) ShareBrain(ctx context.Context, brainID, requesterID string) (string, error) {
	var ownerID string
	row := s.db.QueryRowContext(ctx, "SELECT user_id FROM brains WHERE id = ?", brainID)
	if err := row.Scan(&ownerID); err != nil {
		if err == sql.ErrNoRows {
			return "", apperrors.ErrNotFound
		}
		return "", err
	}
	if ownerID != requesterID {
		// Absence and denial look identical to the caller.
		return "", apperrors.ErrNotFound
	}

	token, err := newShareToken()
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE brains SET is_public = 1, share_token = ?, updated_at = ? WHERE id = ?",
		token, time.Now().UTC(), brainID)
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResolveShared looks up a public brain by its share token and returns it with
// its most recent items. Unauthenticated.
func (s *BrainService) ResolveShared(ctx context.Context, token string) (models.SharedBrain, []models.Item, error) {
	var shared models.SharedBrain
	row := s.db.QueryRowContext(ctx, `
		SELECT b.id, b.name, b.description, b.user_id, b.is_public, b.share_token, b.created_at, b.updated_at, u.username
		FROM brains b
		JOIN users u ON u.id = b.user_id
		WHERE b.share_token = ? AND b.is_public = 1`, token)
	err := row.Scan(&shared.ID, &shared.Name, &shared.Description, &shared.UserID, &shared.IsPublic,
		&shared.ShareToken, &shared.CreatedAt, &shared.UpdatedAt, &shared.OwnerUsername)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.SharedBrain{}, nil, apperrors.ErrNotFound
		}
		return models.SharedBrain{}, nil, err
	}
	shared.Collaborators = []string{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, content, description, type, tags_json, metadata_json, user_id, brain_id, created_at, updated_at
		FROM items WHERE brain_id = ? ORDER BY created_at DESC LIMIT ?`, shared.ID, SharedItemLimit)
	if err != nil {
		return models.SharedBrain{}, nil, err
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return models.SharedBrain{}, nil, err
	}
	return shared, items, nil
}

func (s *BrainService) collaborators(ctx context.Context, brainID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM brain_collaborators WHERE brain_id = ?", brainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collaborators := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		collaborators = append(collaborators, userID)
	}
	return collaborators, rows.Err()
}

// newShareToken returns 32 bytes of crypto-random data, hex-encoded. The
// share_token column's uniqueness constraint backstops collisions.
func newShareToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
