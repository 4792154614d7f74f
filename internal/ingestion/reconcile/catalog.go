package reconcile

import (
	"context"
	"strconv"
	"strings"

	"manhwahub/internal/httpapi/models"
	"manhwahub/internal/ingestion"
	"manhwahub/internal/shared"
)

// Master-list field names as they appear in the source header row.
const (
	fieldTitle      = "Title"
	fieldSynopsis   = "Synopsis"
	fieldYear       = "Year Released"
	fieldChapters   = "Chapter(s)"
	fieldStatus     = "Status"
	fieldRating     = "Rating"
	fieldGenres     = "Genre(s)"
	fieldCategories = "Categories"
)

// catalogKey is the natural key used to match a source row to a stored
// catalog entry across runs; titles may repeat with different synopses, so
// the name alone is not enough.
type catalogKey struct {
	name     string
	synopsis string
}

// SyncManhwas reconciles the manhwa catalog against the master-list rows,
// then rebuilds the genre/category association links. Catalog rows absent
// from the snapshot are deleted last, after relinking, so no link ever points
// at a row about to disappear.
func (s *Syncer) SyncManhwas(ctx context.Context, rows []ingestion.Record) error {
	s.logger.Info("syncing manhwa catalog", "source_rows", len(rows))

	existing, err := s.loadCatalogRows(ctx)
	if err != nil {
		return shared.NewSyncError("manhwas", err)
	}

	// reference-table syncs have already run, so these maps are current
	statusMap, err := s.loadReferenceRows(ctx, "status")
	if err != nil {
		return shared.NewSyncError("manhwas", err)
	}
	ratingMap, err := s.loadReferenceRows(ctx, "rating")
	if err != nil {
		return shared.NewSyncError("manhwas", err)
	}

	var inserts, updates []models.Manhwa
	seen := make(map[catalogKey]bool, len(rows))

	for _, entry := range rows {
		name := strings.TrimSpace(entry[fieldTitle])
		synopsis := strings.TrimSpace(entry[fieldSynopsis])
		key := catalogKey{name: name, synopsis: synopsis}

		if seen[key] {
			s.logger.Warn("dropping duplicate source row", "table", "manhwas", "name", name)
			continue
		}
		seen[key] = true

		manhwa := s.buildManhwa(entry, name, synopsis, statusMap, ratingMap)
		if id, ok := existing[key]; ok {
			manhwa.ID = id
			updates = append(updates, manhwa)
		} else {
			inserts = append(inserts, manhwa)
		}
	}

	if len(inserts) > 0 {
		s.logger.Info("inserting new manhwas", "count", len(inserts))
		inserted, err := s.store.InsertManhwas(ctx, inserts)
		if err != nil {
			return shared.NewSyncError("manhwas", err)
		}
		for _, m := range inserted {
			existing[catalogKey{name: m.Name, synopsis: m.Synopsis}] = m.ID
		}
	}

	if len(updates) > 0 {
		s.logger.Info("updating existing manhwas", "count", len(updates))
		if err := s.store.UpsertManhwas(ctx, updates); err != nil {
			return shared.NewSyncError("manhwas", err)
		}
	}

	// rebuild association links while every referenced row still exists
	if err := s.relinkAssociations(ctx, rows, existing); err != nil {
		return err
	}

	// delete removed manhwas last; link rows for them are pruned by the store
	var toDelete []int64
	for key, id := range existing {
		if !seen[key] {
			toDelete = append(toDelete, id)
		}
	}
	if len(toDelete) > 0 {
		s.logger.Info("deleting obsolete manhwas", "count", len(toDelete))
		if err := s.store.DeleteManhwas(ctx, toDelete); err != nil {
			return shared.NewSyncError("manhwas", err)
		}
	}

	s.logger.Info("successfully synced manhwa catalog")
	return nil
}

// buildManhwa assembles the write row for one source entry. Unresolved status
// or rating names and unparsable numerics are data-quality problems in the
// sheet: they are logged and the field left empty, never fatal.
func (s *Syncer) buildManhwa(entry ingestion.Record, name, synopsis string, statusMap, ratingMap map[string]int64) models.Manhwa {
	manhwa := models.Manhwa{
		Name:     name,
		Synopsis: synopsis,
		Chapters: strings.TrimSpace(entry[fieldChapters]),
	}

	if year, err := strconv.Atoi(strings.TrimSpace(entry[fieldYear])); err == nil {
		manhwa.YearReleased = year
	} else {
		s.logger.Warn("unparsable release year", "name", name, "value", entry[fieldYear])
	}

	min, max, ok := deriveChapterRange(manhwa.Chapters)
	if !ok {
		s.logger.Warn("unparsable chapter descriptor", "name", name, "value", manhwa.Chapters)
	}
	manhwa.ChapterMin = min
	manhwa.ChapterMax = max

	if id, ok := statusMap[strings.TrimSpace(entry[fieldStatus])]; ok {
		manhwa.StatusID = &id
	} else {
		s.logger.Warn("status not found", "name", name, "status", entry[fieldStatus])
	}
	if id, ok := ratingMap[strings.TrimSpace(entry[fieldRating])]; ok {
		manhwa.RatingID = &id
	} else {
		s.logger.Warn("rating not found", "name", name, "rating", entry[fieldRating])
	}

	return manhwa
}

// loadCatalogRows fetches the full catalog as a (name, synopsis) -> id map,
// paginated until the store returns an empty page.
func (s *Syncer) loadCatalogRows(ctx context.Context) (map[catalogKey]int64, error) {
	rows := make(map[catalogKey]int64)
	offset := 0
	for {
		page, err := s.store.FetchCatalogPage(ctx, offset, s.pageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			rows[catalogKey{name: m.Name, synopsis: m.Synopsis}] = m.ID
		}
		offset += s.pageSize
	}
	s.logger.Info("fetched catalog rows", "count", len(rows))
	return rows, nil
}
