package reconcile

import (
	"context"
	"fmt"
	"sort"

	"manhwahub/internal/httpapi/models"
)

// fakeStore is an in-memory Store for reconciler tests. It keeps per-op
// counters so tests can assert that an idempotent re-run performs no writes.
type fakeStore struct {
	refs       map[string][]ReferenceRow
	refNextID  map[string]int64
	catalog    []models.Manhwa
	nextID     int64
	genreLinks map[models.ManhwaGenre]bool
	catLinks   map[models.ManhwaCategory]bool

	inserts int
	updates int
	deletes int

	failOnTable string // FetchReferencePage for this table errors
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		refs:       make(map[string][]ReferenceRow),
		refNextID:  make(map[string]int64),
		genreLinks: make(map[models.ManhwaGenre]bool),
		catLinks:   make(map[models.ManhwaCategory]bool),
	}
}

func (f *fakeStore) seedReference(table string, names ...string) {
	for _, name := range names {
		f.refNextID[table]++
		f.refs[table] = append(f.refs[table], ReferenceRow{ID: f.refNextID[table], Name: name})
	}
}

func (f *fakeStore) seedManhwa(name, synopsis string) int64 {
	f.nextID++
	f.catalog = append(f.catalog, models.Manhwa{ID: f.nextID, Name: name, Synopsis: synopsis})
	return f.nextID
}

func (f *fakeStore) referenceID(table, name string) int64 {
	for _, row := range f.refs[table] {
		if row.Name == name {
			return row.ID
		}
	}
	return 0
}

func (f *fakeStore) referenceNames(table string) []string {
	names := make([]string, 0, len(f.refs[table]))
	for _, row := range f.refs[table] {
		names = append(names, row.Name)
	}
	sort.Strings(names)
	return names
}

func (f *fakeStore) catalogNames() []string {
	names := make([]string, 0, len(f.catalog))
	for _, m := range f.catalog {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

func (f *fakeStore) findManhwa(name string) *models.Manhwa {
	for i := range f.catalog {
		if f.catalog[i].Name == name {
			return &f.catalog[i]
		}
	}
	return nil
}

func (f *fakeStore) resetCounters() {
	f.inserts, f.updates, f.deletes = 0, 0, 0
}

func (f *fakeStore) FetchReferencePage(_ context.Context, table string, offset, limit int) ([]ReferenceRow, error) {
	if table == f.failOnTable {
		return nil, fmt.Errorf("store down")
	}
	return page(f.refs[table], offset, limit), nil
}

func (f *fakeStore) InsertReferenceRows(_ context.Context, table string, rows []ReferenceRow) ([]ReferenceRow, error) {
	f.inserts += len(rows)
	for i := range rows {
		f.refNextID[table]++
		rows[i].ID = f.refNextID[table]
		f.refs[table] = append(f.refs[table], rows[i])
	}
	return rows, nil
}

func (f *fakeStore) UpsertReferenceRows(_ context.Context, table string, rows []ReferenceRow) error {
	f.updates += len(rows)
	for _, row := range rows {
		for i := range f.refs[table] {
			if f.refs[table][i].ID == row.ID {
				f.refs[table][i] = row
			}
		}
	}
	return nil
}

func (f *fakeStore) DeleteReferenceRows(_ context.Context, table string, ids []int64) error {
	f.deletes += len(ids)
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.refs[table][:0]
	for _, row := range f.refs[table] {
		if !drop[row.ID] {
			kept = append(kept, row)
		}
	}
	f.refs[table] = kept
	return nil
}

func (f *fakeStore) FetchCatalogPage(_ context.Context, offset, limit int) ([]models.Manhwa, error) {
	return page(f.catalog, offset, limit), nil
}

func (f *fakeStore) InsertManhwas(_ context.Context, rows []models.Manhwa) ([]models.Manhwa, error) {
	f.inserts += len(rows)
	for i := range rows {
		f.nextID++
		rows[i].ID = f.nextID
		f.catalog = append(f.catalog, rows[i])
	}
	return rows, nil
}

func (f *fakeStore) UpsertManhwas(_ context.Context, rows []models.Manhwa) error {
	f.updates += len(rows)
	for _, row := range rows {
		for i := range f.catalog {
			if f.catalog[i].ID == row.ID {
				// image_url and created_at survive sync updates
				row.ImageURL = f.catalog[i].ImageURL
				row.CreatedAt = f.catalog[i].CreatedAt
				f.catalog[i] = row
			}
		}
	}
	return nil
}

func (f *fakeStore) DeleteManhwas(_ context.Context, ids []int64) error {
	f.deletes += len(ids)
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.catalog[:0]
	for _, m := range f.catalog {
		if !drop[m.ID] {
			kept = append(kept, m)
		}
	}
	f.catalog = kept
	for link := range f.genreLinks {
		if drop[link.ManhwaID] {
			delete(f.genreLinks, link)
		}
	}
	for link := range f.catLinks {
		if drop[link.ManhwaID] {
			delete(f.catLinks, link)
		}
	}
	return nil
}

func (f *fakeStore) UpsertGenreLinks(_ context.Context, links []models.ManhwaGenre) error {
	for _, link := range links {
		f.genreLinks[link] = true
	}
	return nil
}

func (f *fakeStore) UpsertCategoryLinks(_ context.Context, links []models.ManhwaCategory) error {
	for _, link := range links {
		f.catLinks[link] = true
	}
	return nil
}

func (f *fakeStore) PruneGenreLinks(_ context.Context, manhwaID int64, keep []int64) error {
	keepSet := make(map[int64]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}
	for link := range f.genreLinks {
		if link.ManhwaID == manhwaID && !keepSet[link.GenreID] {
			delete(f.genreLinks, link)
		}
	}
	return nil
}

func (f *fakeStore) PruneCategoryLinks(_ context.Context, manhwaID int64, keep []int64) error {
	keepSet := make(map[int64]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}
	for link := range f.catLinks {
		if link.ManhwaID == manhwaID && !keepSet[link.CategoryID] {
			delete(f.catLinks, link)
		}
	}
	return nil
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
