package services

import (
	"context"
	"errors"
	"testing"

	"github.com/isdelr/second-brain-be/internal/apperrors"
	"github.com/isdelr/second-brain-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItem_Validation(t *testing.T) {
	db := newTestDB(t)
	brains := NewBrainService(db)
	svc := NewItemService(db, brains, &stubExtractor{})
	alice := registerTestUser(t, db, "alice")
	brain := defaultBrainOf(t, db, alice.ID)

	var ve *apperrors.ValidationError

	_, err := svc.CreateItem(context.Background(), alice.ID, NewItemInput{Type: "note", BrainID: brain.ID})
	assert.ErrorAs(t, err, &ve)

	_, err = svc.CreateItem(context.Background(), alice.ID, NewItemInput{Title: "x", Type: "podcast", BrainID: brain.ID})
	assert.ErrorAs(t, err, &ve)

	_, err = svc.CreateItem(context.Background(), alice.ID, NewItemInput{Title: "x", Type: "note"})
	assert.ErrorAs(t, err, &ve)
}

func TestCreateItem_BrainAccess(t *testing.T) {
	db := newTestDB(t)
	brains := NewBrainService(db)
	svc := NewItemService(db, brains, &stubExtractor{})
	alice := registerTestUser(t, db, "alice")
	bob := registerTestUser(t, db, "bob")
	carol := registerTestUser(t, db, "carol")
	brain := defaultBrainOf(t, db, alice.ID)
	require.NoError(t, brains.AddCollaborator(context.Background(), brain.ID, bob.ID))

	// Owner and collaborator may create
	_, err := svc.CreateItem(context.Background(), alice.ID, NewItemInput{Title: "a", Type: "note", BrainID: brain.ID})
	require.NoError(t, err)
	item, err := svc.CreateItem(context.Background(), bob.ID, NewItemInput{Title: "b", Type: "note", BrainID: brain.ID})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, item.UserID)

	// Strangers get NotFound, never Forbidden
	dave := registerTestUser(t, db, "dave")
	for _, stranger := range []string{carol.ID, dave.ID} {
		_, err = svc.CreateItem(context.Background(), stranger, NewItemInput{Title: "c", Type: "note", BrainID: brain.ID})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	}
}

func TestCreateItem_TagNormalization(t *testing.T) {
	db := newTestDB(t)
	svc := NewItemService(db, NewBrainService(db), &stubExtractor{})
	alice := registerTestUser(t, db, "alice")
	brain := defaultBrainOf(t, db, alice.ID)

	item, err := svc.CreateItem(context.Background(), alice.ID, NewItemInput{
		Title:   "Tagged",
		Type:    "note",
		BrainID: brain.ID,
		Tags:    []string{"a", " b ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, item.Tags)

	// Round-trips through storage
	items, _, err := svc.ListItems(context.Background(), alice.ID, ItemFilters{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"a", "b"}, items[0].Tags)
}

func TestCreateItem_MetadataFallback(t *testing.T) {
	db := newTestDB(t)
	alice := registerTestUser(t, db, "alice")
	brain := defaultBrainOf(t, db, alice.ID)

	meta := &models.ItemMetadata{
		Title:       "Fetched Title",
		Description: "Fetched description",
		Thumbnail:   "https://example.com/t.png",
	}
	svc := NewItemService(db, NewBrainService(db), &stubExtractor{meta: meta})

	item, err := svc.CreateItem(context.Background(), alice.ID, NewItemInput{
		Title:   "Paper",
		Type:    "article",
		BrainID: brain.ID,
		URL:     "https://example.com/paper",
	})
	require.NoError(t, err)
	assert.Equal(t, "Paper", item.Title)
	assert.Equal(t, "Fetched description", item.Description)
	require.NotNil(t, item.Metadata)
	assert.Equal(t, "https://example.com/t.png", item.Metadata.Thumbnail)

	// Caller-supplied description wins over the scraped one
	item, err = svc.CreateItem(context.Background(), alice.ID, NewItemInput{
		Title:       "Paper 2",
		Type:        "article",
		BrainID:     brain.ID,
		URL:         "https://example.com/paper2",
		Description: "mine",
	})
	require.NoError(t, err)
	assert.Equal(t, "mine", item.Description)
}

func TestCreateItem_ExtractionFailureIsSwallowed(t *testing.T) {
	db := newTestDB(t)
	alice := registerTestUser(t, db, "alice")
	brain := defaultBrainOf(t, db, alice.ID)
	svc := NewItemService(db, NewBrainService(db), &stubExtractor{err: errors.New("connection refused")})

	item, err := svc.CreateItem(context.Background(), alice.ID, NewItemInput{
		Title:   "Paper",
		Type:    "article",
		BrainID: brain.ID,
		URL:     "https://unreachable.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "", item.Description)
	assert.Nil(t, item.Metadata)
}

func TestListItems_FiltersAndPagination(t *testing.T) {
	db := newTestDB(t)
	brains := NewBrainService(db)
	svc := NewItemService(db, brains, &stubExtractor{})
	alice := registerTestUser(t, db, "alice")
	brain := defaultBrainOf(t, db, alice.ID)
	other, err := brains.CreateBrain(context.Background(), alice.ID, "Other", "")
	require.NoError(t, err)

	mk := func(title, typ, brainID string, tags ...string) {
		t.Helper()
		_, err := svc.CreateItem(context.Background(), alice.ID, NewItemInput{
			Title: title, Type: typ, BrainID: brainID, Tags: tags,
			Content: "content of " + title,
		})
		require.NoError(t, err)
	}
	mk("Go generics", "article", brain.ID, "go")
	mk("Rust borrowck", "article", brain.ID, "rust")
	mk("Talk recording", "video", brain.ID, "go", "video")
	mk("Scratch note", "note", other.ID)

	// Type filter
	items, page, err := svc.ListItems(context.Background(), alice.ID, ItemFilters{Type: "article"}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, page.Total)

	// Brain filter
	items, _, err = svc.ListItems(context.Background(), alice.ID, ItemFilters{BrainID: other.ID}, 1, 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Scratch note", items[0].Title)

	// Any-of tags
	items, _, err = svc.ListItems(context.Background(), alice.ID, ItemFilters{Tags: []string{"go", "rust"}}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	// Free-text search across title/description/content
	items, _, err = svc.ListItems(context.Background(), alice.ID, ItemFilters{Search: "borrowck"}, 1, 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rust borrowck", items[0].Title)

	// Pagination math
	items, page, err = svc.ListItems(context.Background(), alice.ID, ItemFilters{}, 1, 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.Pages)

	items, page, err = svc.ListItems(context.Background(), alice.ID, ItemFilters{}, 2, 3)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, page.Page)

	// Defaults kick in for out-of-range values
	_, page, err = svc.ListItems(context.Background(), alice.ID, ItemFilters{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPage, page.Page)
	assert.Equal(t, DefaultLimit, page.Limit)
}

func TestListItems_ScopedToRequesterOnly(t *testing.T) {
	db := newTestDB(t)
	brains := NewBrainService(db)
	svc := NewItemService(db, brains, &stubExtractor{})
	alice := registerTestUser(t, db, "alice")
	bob := registerTestUser(t, db, "bob")
	brain := defaultBrainOf(t, db, alice.ID)
	require.NoError(t, brains.AddCollaborator(context.Background(), brain.ID, bob.ID))

	_, err := svc.CreateItem(context.Background(), alice.ID, NewItemInput{Title: "alice's", Type: "note", BrainID: brain.ID})
	require.NoError(t, err)

	// Bob collaborates on the brain yet sees none of alice's items through the
	// listing endpoint; only listBrains reflects the collaboration.
	items, page, err := svc.ListItems(context.Background(), bob.ID, ItemFilters{BrainID: brain.ID}, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, page.Total)
}

func TestUpdateItem_OwnershipAndPatch(t *testing.T) {
	db := newTestDB(t)
	brains := NewBrainService(db)
	svc := NewItemService(db, brains, &stubExtractor{})
	alice := registerTestUser(t, db, "alice")
	bob := registerTestUser(t, db, "bob")
	brain := defaultBrainOf(t, db, alice.ID)
	require.NoError(t, brains.AddCollaborator(context.Background(), brain.ID, bob.ID))

	item, err := svc.CreateItem(context.Background(), alice.ID, NewItemInput{
		Title: "Original", Type: "note", BrainID: brain.ID, Content: "keep me",
	})
	require.NoError(t, err)

	// Even a collaborator cannot touch another member's item
	title := "Hacked"
	_, err = svc.UpdateItem(context.Background(), bob.ID, item.ID, ItemPatch{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	newTitle := "Renamed"
	updated, err := svc.UpdateItem(context.Background(), alice.ID, item.ID, ItemPatch{
		Title: &newTitle,
		Tags:  []string{" x ", "y", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "keep me", updated.Content) // untouched
	assert.Equal(t, []string{"x", "y"}, updated.Tags)

	badType := "podcast"
	_, err = svc.UpdateItem(context.Background(), alice.ID, item.ID, ItemPatch{Type: &badType})
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.UpdateItem(context.Background(), alice.ID, "no-such-item", ItemPatch{Title: &newTitle})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteItem_OwnershipScoped(t *testing.T) {
	db := newTestDB(t)
	brains := NewBrainService(db)
	svc := NewItemService(db, brains, &stubExtractor{})
	alice := registerTestUser(t, db, "alice")
	bob := registerTestUser(t, db, "bob")
	brain := defaultBrainOf(t, db, alice.ID)
	require.NoError(t, brains.AddCollaborator(context.Background(), brain.ID, bob.ID))

	item, err := svc.CreateItem(context.Background(), alice.ID, NewItemInput{Title: "Mine", Type: "note", BrainID: brain.ID})
	require.NoError(t, err)

	err = svc.DeleteItem(context.Background(), bob.ID, item.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.DeleteItem(context.Background(), alice.ID, item.ID))

	err = svc.DeleteItem(context.Background(), alice.ID, item.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
