package reconcile

import (
	"context"

	"manhwahub/internal/ingestion"
)

// Field sets for the reference tables: source header name -> store column.
// The first mapping is the table's unique key.
var (
	genreFields = []FieldMapping{
		{Source: "Genre", Target: "name"},
		{Source: "Description", Target: "description"},
	}
	categoryFields = []FieldMapping{
		{Source: "Main Categories", Target: "name"},
		{Source: "Description", Target: "description"},
	}
	ratingFields = []FieldMapping{
		{Source: "Rating", Target: "name"},
		{Source: "Description", Target: "description"},
	}
	statusFields = []FieldMapping{
		{Source: "Status", Target: "name"},
		{Source: "Description", Target: "description"},
	}
)

// SyncAll runs a full reconciliation of the snapshot into the store.
// Reference tables go first so the catalog phase can resolve status and
// rating ids; the catalog phase rebuilds association links itself. The run
// aborts on the first failed phase.
func (s *Syncer) SyncAll(ctx context.Context, snapshot *ingestion.Snapshot) error {
	if err := s.SyncReferenceTable(ctx, "genres", snapshot.Genres, genreFields); err != nil {
		return err
	}
	if err := s.SyncReferenceTable(ctx, "categories", snapshot.Categories, categoryFields); err != nil {
		return err
	}
	if err := s.SyncReferenceTable(ctx, "rating", snapshot.Rating, ratingFields); err != nil {
		return err
	}
	if err := s.SyncReferenceTable(ctx, "status", snapshot.Status, statusFields); err != nil {
		return err
	}
	return s.SyncManhwas(ctx, snapshot.MasterList)
}
