// Package reconcile implements the catalog synchronization engine: it takes a
// snapshot of the spreadsheet source and makes the relational store match it,
// inserting new rows, updating changed ones, deleting rows no longer present
// and rebuilding the many-to-many association links.
package reconcile

import (
	"context"
	"log/slog"
)

const (
	// page size for loading existing store rows
	fetchPageSize = 1000
)

// FieldMapping maps a source field name to a store column name. The first
// mapping of a table's field set is its unique key.
type FieldMapping struct {
	Source string
	Target string
}

// Syncer reconciles source snapshots into the relational store. One instance
// per process; a sync run is single-threaded and phases run in dependency
// order.
type Syncer struct {
	store    Store
	aliases  map[string]string // category name drift fixes, old name -> canonical name
	logger   *slog.Logger
	pageSize int
}

// NewSyncer creates a syncer over the given store. The aliases map handles
// historical category renames; pass DefaultCategoryAliases unless the source
// has drifted further.
func NewSyncer(store Store, aliases map[string]string, logger *slog.Logger) *Syncer {
	if aliases == nil {
		aliases = map[string]string{}
	}
	return &Syncer{
		store:    store,
		aliases:  aliases,
		logger:   logger,
		pageSize: fetchPageSize,
	}
}

// loadReferenceRows fetches the full reference table as a name -> id map,
// paginated until the store returns an empty page.
func (s *Syncer) loadReferenceRows(ctx context.Context, table string) (map[string]int64, error) {
	rows := make(map[string]int64)
	offset := 0
	for {
		page, err := s.store.FetchReferencePage(ctx, table, offset, s.pageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, row := range page {
			rows[row.Name] = row.ID
		}
		offset += s.pageSize
	}
	s.logger.Info("fetched reference rows", "table", table, "count", len(rows))
	return rows, nil
}
