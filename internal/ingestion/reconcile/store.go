package reconcile

import (
	"context"

	"manhwahub/internal/httpapi/models"
)

// ReferenceRow is a row of one of the reference tables (genres, categories,
// rating, status) as seen by the reconciler.
type ReferenceRow struct {
	ID          int64
	Name        string
	Description string
}

// ReferenceStore is the store surface needed to reconcile a reference table.
// All operations address the table by name; implementations chunk bulk writes
// to the store's request-size limits.
type ReferenceStore interface {
	FetchReferencePage(ctx context.Context, table string, offset, limit int) ([]ReferenceRow, error)
	InsertReferenceRows(ctx context.Context, table string, rows []ReferenceRow) ([]ReferenceRow, error)
	UpsertReferenceRows(ctx context.Context, table string, rows []ReferenceRow) error
	DeleteReferenceRows(ctx context.Context, table string, ids []int64) error
}

// CatalogStore is the store surface needed to reconcile the manhwa catalog.
// InsertManhwas returns the inserted rows with their assigned ids.
type CatalogStore interface {
	FetchCatalogPage(ctx context.Context, offset, limit int) ([]models.Manhwa, error)
	InsertManhwas(ctx context.Context, rows []models.Manhwa) ([]models.Manhwa, error)
	UpsertManhwas(ctx context.Context, rows []models.Manhwa) error
	DeleteManhwas(ctx context.Context, ids []int64) error
}

// LinkStore is the store surface for the many-to-many association tables.
// Upserts are idempotent on the composite key; Prune deletes every link of a
// manhwa that is not in the keep set.
type LinkStore interface {
	UpsertGenreLinks(ctx context.Context, links []models.ManhwaGenre) error
	UpsertCategoryLinks(ctx context.Context, links []models.ManhwaCategory) error
	PruneGenreLinks(ctx context.Context, manhwaID int64, keep []int64) error
	PruneCategoryLinks(ctx context.Context, manhwaID int64, keep []int64) error
}

// Store bundles everything the sync orchestrator needs from the relational
// store.
type Store interface {
	ReferenceStore
	CatalogStore
	LinkStore
}
