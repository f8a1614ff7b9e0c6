package services

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/second-brain-be/internal/apperrors"
	"github.com/isdelr/second-brain-be/internal/auth"
	"github.com/isdelr/second-brain-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBrainName is the brain every new account starts with.
const (
	DefaultBrainName        = "My Brain"
	DefaultBrainDescription = "Your personal knowledge base"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	RegisterUser(ctx context.Context, username, email, password string) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
	LoginWithGoogle(ctx context.Context, ident auth.GoogleIdentity) (models.User, error)
}

// UserService provides business logic for user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, google_id, avatar, created_at, updated_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.GoogleID, &user.Avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperrors.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// getUserByEmail retrieves a user by email, including the password hash.
func (s *UserService) getUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, google_id, avatar, created_at, updated_at FROM users WHERE email = ?",
		strings.ToLower(email))
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.GoogleID, &user.Avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperrors.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// RegisterUser creates a new user and their default brain in one transaction.
func (s *UserService) RegisterUser(ctx context.Context, username, email, password string) (models.User, error) {
	email = strings.ToLower(email)

	var exists int
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM users WHERE email = ? OR username = ?", email, username)
	if err := row.Scan(&exists); err != nil {
		return models.User{}, err
	}
	if exists > 0 {
		return models.User{}, fmt.Errorf("user with this email or username %w", apperrors.ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.createUserWithDefaultBrain(ctx, &user); err != nil {
		return models.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// AuthenticateUser verifies a user's credentials.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// LoginWithGoogle finds the user matching a verified Google identity, creating
// a fresh account (with its default brain) or linking the Google ID onto an
// existing one.
func (s *UserService) LoginWithGoogle(ctx context.Context, ident auth.GoogleIdentity) (models.User, error) {
	if ident.Email == "" {
		return models.User{}, apperrors.NewValidationError("email", "email not found in token")
	}

	user, err := s.getUserByEmail(ctx, ident.Email)
	if err == nil {
		if user.GoogleID == nil {
			now := time.Now().UTC()
			avatar := user.Avatar
			if avatar == nil && ident.Picture != "" {
				avatar = &ident.Picture
			}
			_, err = s.db.ExecContext(ctx,
				"UPDATE users SET google_id = ?, avatar = ?, updated_at = ? WHERE id = ?",
				ident.GoogleID, avatar, now, user.ID)
			if err != nil {
				return models.User{}, err
			}
			user.GoogleID = &ident.GoogleID
			user.Avatar = avatar
			user.UpdatedAt = now
		}
		user.PasswordHash = ""
		return user, nil
	}
	if err != apperrors.ErrNotFound {
		return models.User{}, err
	}

	// First Google login: mint an account. They never use this password, but
	// every account carries one.
	randomPassword := uuid.New().String()
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(randomPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	username, err := s.uniqueUsername(ctx, ident)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	user = models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        strings.ToLower(ident.Email),
		PasswordHash: string(hashedPassword),
		GoogleID:     &ident.GoogleID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if ident.Picture != "" {
		user.Avatar = &ident.Picture
	}

	if err := s.createUserWithDefaultBrain(ctx, &user); err != nil {
		return models.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// createUserWithDefaultBrain inserts the user row and their "My Brain" in a
// single transaction, so no account ever exists without a brain.
func (s *UserService) createUserWithDefaultBrain(ctx context.Context, user *models.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO users(id, username, email, password_hash, google_id, avatar, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, user.GoogleID, user.Avatar, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO brains(id, name, description, user_id, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)",
		uuid.New().String(), DefaultBrainName, DefaultBrainDescription, user.ID, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// uniqueUsername derives a username from the Google profile, suffixing a
// random number on collision the way the original client-facing app did.
func (s *UserService) uniqueUsername(ctx context.Context, ident auth.GoogleIdentity) (string, error) {
	username := strings.ToLower(strings.ReplaceAll(ident.Name, " ", ""))
	if username == "" {
		username = strings.Split(ident.Email, "@")[0]
	}

	var taken int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM users WHERE username = ?", username)
	if err := row.Scan(&taken); err != nil {
		return "", err
	}
	if taken > 0 {
		username = fmt.Sprintf("%s%d", username, rand.Intn(1000))
	}
	return username, nil
}
