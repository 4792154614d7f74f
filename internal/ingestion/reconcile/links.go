package reconcile

import (
	"context"
	"strings"

	"manhwahub/internal/httpapi/models"
	"manhwahub/internal/ingestion"
	"manhwahub/internal/shared"
)

// DefaultCategoryAliases maps category names that drifted in the source sheet
// to their canonical reference-table names.
var DefaultCategoryAliases = map[string]string{
	"Dungeon/Towers":        "Dungeon/Tower",
	"Multiple Protagonists": "Multiple Protagonist",
}

// relinkAssociations rebuilds the manhwa-genre and manhwa-category link
// tables from the source rows. Links are upserted first, then every resolved
// manhwa has its stale links pruned, so a manhwa whose genre list shrank in
// the sheet loses the removed links.
func (s *Syncer) relinkAssociations(ctx context.Context, rows []ingestion.Record, keyToID map[catalogKey]int64) error {
	genreMap, err := s.loadReferenceRows(ctx, "genres")
	if err != nil {
		return shared.NewSyncError("links", err)
	}
	categoryMap, err := s.loadReferenceRows(ctx, "categories")
	if err != nil {
		return shared.NewSyncError("links", err)
	}

	var genreLinks []models.ManhwaGenre
	var categoryLinks []models.ManhwaCategory
	genreKeep := make(map[int64][]int64)
	categoryKeep := make(map[int64][]int64)
	seenGenre := make(map[models.ManhwaGenre]bool)
	seenCategory := make(map[models.ManhwaCategory]bool)

	for _, entry := range rows {
		name := strings.TrimSpace(entry[fieldTitle])
		synopsis := strings.TrimSpace(entry[fieldSynopsis])
		manhwaID, ok := keyToID[catalogKey{name: name, synopsis: synopsis}]
		if !ok {
			// duplicate source row already dropped by the catalog phase
			continue
		}
		if _, done := genreKeep[manhwaID]; done {
			continue
		}
		genreKeep[manhwaID] = []int64{}
		categoryKeep[manhwaID] = []int64{}

		for _, genreName := range splitList(entry[fieldGenres]) {
			genreID, ok := genreMap[genreName]
			if !ok {
				s.logger.Warn("genre not found", "name", name, "genre", genreName)
				continue
			}
			link := models.ManhwaGenre{ManhwaID: manhwaID, GenreID: genreID}
			if !seenGenre[link] {
				seenGenre[link] = true
				genreLinks = append(genreLinks, link)
			}
			genreKeep[manhwaID] = append(genreKeep[manhwaID], genreID)
		}

		for _, categoryName := range splitList(entry[fieldCategories]) {
			categoryID, ok := categoryMap[categoryName]
			if !ok {
				if alias, found := s.aliases[categoryName]; found {
					categoryID, ok = categoryMap[alias]
				}
			}
			if !ok {
				s.logger.Warn("category not found", "name", name, "category", categoryName)
				continue
			}
			link := models.ManhwaCategory{ManhwaID: manhwaID, CategoryID: categoryID}
			if !seenCategory[link] {
				seenCategory[link] = true
				categoryLinks = append(categoryLinks, link)
			}
			categoryKeep[manhwaID] = append(categoryKeep[manhwaID], categoryID)
		}
	}

	if len(genreLinks) > 0 {
		if err := s.store.UpsertGenreLinks(ctx, genreLinks); err != nil {
			return shared.NewSyncError("links", err)
		}
	}
	if len(categoryLinks) > 0 {
		if err := s.store.UpsertCategoryLinks(ctx, categoryLinks); err != nil {
			return shared.NewSyncError("links", err)
		}
	}

	for manhwaID, keep := range genreKeep {
		if err := s.store.PruneGenreLinks(ctx, manhwaID, keep); err != nil {
			return shared.NewSyncError("links", err)
		}
	}
	for manhwaID, keep := range categoryKeep {
		if err := s.store.PruneCategoryLinks(ctx, manhwaID, keep); err != nil {
			return shared.NewSyncError("links", err)
		}
	}

	s.logger.Info("rebuilt association links",
		"genre_links", len(genreLinks), "category_links", len(categoryLinks))
	return nil
}

// splitList splits a ", " separated cell into trimmed non-empty values. A
// comma without a following space is part of the name, not a separator.
func splitList(cell string) []string {
	parts := strings.Split(cell, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
