package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/isdelr/second-brain-be/internal/database"
	"github.com/isdelr/second-brain-be/internal/metadata"
	"github.com/isdelr/second-brain-be/internal/models"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func registerTestUser(t *testing.T, db *sql.DB, username string) models.User {
	t.Helper()
	user, err := NewUserService(db).RegisterUser(context.Background(), username, username+"@x.com", "secret1")
	require.NoError(t, err)
	return user
}

func defaultBrainOf(t *testing.T, db *sql.DB, userID string) models.Brain {
	t.Helper()
	brains, err := NewBrainService(db).ListBrains(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, brains)
	return brains[len(brains)-1]
}

// stubExtractor returns a fixed metadata block or error; keeps item tests off
// the network.
type stubExtractor struct {
	meta *models.ItemMetadata
	err  error
}

func (s *stubExtractor) Extract(ctx context.Context, url string) (*models.ItemMetadata, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.meta, nil
}

var _ metadata.Extractor = (*stubExtractor)(nil)
