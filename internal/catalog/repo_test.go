package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardmirror/pkg/database"
	"cardmirror/pkg/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.Open(database.Config{DSN: ":memory:"})
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewRepo(db)
}

func testCard(t *testing.T, id int64, name, desc string) models.Card {
	t.Helper()
	rec := models.CardRecord{
		ID:         id,
		Name:       name,
		Type:       "Monster",
		Desc:       desc,
		CardImages: []models.CardImage{{ImageURL: "https://img.example/" + name + ".jpg"}},
	}
	card, err := rec.Project()
	require.NoError(t, err)
	return card
}

func seedTestCards(t *testing.T, repo *Repo) {
	t.Helper()
	err := repo.UpsertChunk(context.Background(), []models.Card{
		testCard(t, 1, "Blue Dragon", "fire"),
		testCard(t, 2, "Red Wolf", "ice dragon"),
	})
	require.NoError(t, err)
}

func searchNames(t *testing.T, raws []json.RawMessage) []string {
	t.Helper()
	names := make([]string, 0, len(raws))
	for _, raw := range raws {
		var rec models.CardRecord
		require.NoError(t, json.Unmarshal(raw, &rec))
		names = append(names, rec.Name)
	}
	return names
}

func TestSearchMatchesNameOrDesc(t *testing.T) {
	repo := newTestRepo(t)
	seedTestCards(t, repo)
	ctx := context.Background()

	// "dragon" hits Blue Dragon by name and Red Wolf by desc
	got, err := repo.Search(ctx, "dragon")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Blue Dragon", "Red Wolf"}, searchNames(t, got))

	got, err = repo.Search(ctx, "wolf")
	require.NoError(t, err)
	assert.Equal(t, []string{"Red Wolf"}, searchNames(t, got))
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	seedTestCards(t, repo)

	got, err := repo.Search(context.Background(), "DRAGON")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchBlankTermMatchesNothing(t *testing.T) {
	repo := newTestRepo(t)
	seedTestCards(t, repo)
	ctx := context.Background()

	for _, term := range []string{"", "   ", "\t"} {
		got, err := repo.Search(ctx, term)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	}
}

func TestSearchReturnsOriginalRecords(t *testing.T) {
	repo := newTestRepo(t)
	seedTestCards(t, repo)

	got, err := repo.Search(context.Background(), "wolf")
	require.NoError(t, err)
	require.Len(t, got, 1)

	var full map[string]any
	require.NoError(t, json.Unmarshal(got[0], &full))
	assert.Contains(t, full, "card_images")
}

func TestImageURL(t *testing.T) {
	repo := newTestRepo(t)
	seedTestCards(t, repo)
	ctx := context.Background()

	url, err := repo.ImageURL(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/Blue Dragon.jpg", url)

	_, err = repo.ImageURL(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertChunkOverwritesExisting(t *testing.T) {
	repo := newTestRepo(t)
	seedTestCards(t, repo)
	ctx := context.Background()

	err := repo.UpsertChunk(ctx, []models.Card{
		testCard(t, 2, "Red Wolf", "thunder"),
	})
	require.NoError(t, err)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.Search(ctx, "thunder")
	require.NoError(t, err)
	assert.Equal(t, []string{"Red Wolf"}, searchNames(t, got))

	got, err = repo.Search(ctx, "ice")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpsertChunkEmpty(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.UpsertChunk(context.Background(), nil))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
