package images

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manhwahub/internal/httpapi/models"
)

type fakeCatalog struct {
	missing []models.Manhwa
	all     []models.Manhwa
	updated map[int64]string
}

func (f *fakeCatalog) ListWithoutImage(context.Context) ([]models.Manhwa, error) {
	return f.missing, nil
}

func (f *fakeCatalog) ListAll(context.Context) ([]models.Manhwa, error) {
	return f.all, nil
}

func (f *fakeCatalog) UpdateImageURL(_ context.Context, manhwaID int64, imageURL string) error {
	if f.updated == nil {
		f.updated = make(map[int64]string)
	}
	f.updated[manhwaID] = imageURL
	return nil
}

type fakeLookup struct {
	urls  map[string]string
	errs  map[string]error
	calls map[string]int
}

func (f *fakeLookup) LookupImageURL(_ context.Context, title string) (string, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[title]++
	if err, ok := f.errs[title]; ok {
		return "", err
	}
	return f.urls[title], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBackfillMissing_UpdatesEveryMatch(t *testing.T) {
	catalog := &fakeCatalog{missing: []models.Manhwa{
		{ID: 1, Name: "Solo Up"},
		{ID: 2, Name: "Tower Climb"},
	}}
	lookup := &fakeLookup{urls: map[string]string{
		"Solo Up":     "https://cdn.example/1.jpg",
		"Tower Climb": "https://cdn.example/2.jpg",
	}}

	u := NewUpdater(catalog, lookup, discardLogger())
	require.NoError(t, u.BackfillMissing(context.Background()))

	assert.Equal(t, "https://cdn.example/1.jpg", catalog.updated[1])
	assert.Equal(t, "https://cdn.example/2.jpg", catalog.updated[2])
}

func TestBackfillMissing_SkipsTitlesWithoutMatch(t *testing.T) {
	catalog := &fakeCatalog{missing: []models.Manhwa{
		{ID: 1, Name: "Unknown Title"},
		{ID: 2, Name: "Solo Up"},
	}}
	lookup := &fakeLookup{
		urls: map[string]string{"Solo Up": "https://cdn.example/2.jpg"},
		errs: map[string]error{"Unknown Title": ErrNoMatch},
	}

	u := NewUpdater(catalog, lookup, discardLogger())
	require.NoError(t, u.BackfillMissing(context.Background()))

	_, touched := catalog.updated[1]
	assert.False(t, touched)
	assert.Equal(t, "https://cdn.example/2.jpg", catalog.updated[2])
	// a definite miss is not retried
	assert.Equal(t, 1, lookup.calls["Unknown Title"])
}

func TestRefreshAll_WalksWholeCatalog(t *testing.T) {
	catalog := &fakeCatalog{all: []models.Manhwa{
		{ID: 1, Name: "Solo Up"},
	}}
	lookup := &fakeLookup{urls: map[string]string{"Solo Up": "https://cdn.example/new.jpg"}}

	u := NewUpdater(catalog, lookup, discardLogger())
	require.NoError(t, u.RefreshAll(context.Background()))

	assert.Equal(t, "https://cdn.example/new.jpg", catalog.updated[1])
}

func TestUpdate_StopsOnCancelledContext(t *testing.T) {
	catalog := &fakeCatalog{missing: []models.Manhwa{{ID: 1, Name: "Solo Up"}}}
	lookup := &fakeLookup{errs: map[string]error{"Solo Up": errors.New("transport down")}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := NewUpdater(catalog, lookup, discardLogger())
	err := u.BackfillMissing(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
