package reconcile

import (
	"context"
	"fmt"
	"strings"

	"manhwahub/internal/ingestion"
	"manhwahub/internal/shared"
)

// SyncReferenceTable reconciles one reference table against the source rows.
// fields maps source field names to store columns; the first mapping's target
// is the table's unique key. After a successful run the table's key set
// exactly equals the de-duplicated (first occurrence wins) key set of the
// source.
func (s *Syncer) SyncReferenceTable(ctx context.Context, table string, rows []ingestion.Record, fields []FieldMapping) error {
	s.logger.Info("syncing reference table", "table", table, "source_rows", len(rows))
	if len(fields) == 0 {
		return shared.NewSyncError(table, fmt.Errorf("no field mappings"))
	}
	keySource := fields[0].Source

	existing, err := s.loadReferenceRows(ctx, table)
	if err != nil {
		return shared.NewSyncError(table, err)
	}

	var inserts, updates []ReferenceRow
	retained := make(map[string]bool, len(rows))

	for _, entry := range rows {
		key := strings.TrimSpace(entry[keySource])
		if retained[key] {
			// duplicate keys within one snapshot keep the first occurrence;
			// log so genuine data-entry errors in the sheet stay visible
			s.logger.Warn("dropping duplicate source row", "table", table, "key", key)
			continue
		}
		retained[key] = true

		row := ReferenceRow{Name: key}
		for _, f := range fields[1:] {
			value, ok := entry[f.Source]
			if !ok {
				continue
			}
			switch f.Target {
			case "description":
				row.Description = strings.TrimSpace(value)
			}
		}

		if id, ok := existing[key]; ok {
			row.ID = id
			updates = append(updates, row)
		} else {
			inserts = append(inserts, row)
		}
	}

	if len(inserts) > 0 {
		s.logger.Info("inserting reference rows", "table", table, "count", len(inserts))
		inserted, err := s.store.InsertReferenceRows(ctx, table, inserts)
		if err != nil {
			return shared.NewSyncError(table, err)
		}
		for _, row := range inserted {
			existing[row.Name] = row.ID
		}
	}

	if len(updates) > 0 {
		s.logger.Info("updating reference rows", "table", table, "count", len(updates))
		if err := s.store.UpsertReferenceRows(ctx, table, updates); err != nil {
			return shared.NewSyncError(table, err)
		}
	}

	// delete rows whose key was not seen in this snapshot
	var toDelete []int64
	for key, id := range existing {
		if !retained[key] {
			toDelete = append(toDelete, id)
		}
	}
	if len(toDelete) > 0 {
		s.logger.Info("deleting obsolete reference rows", "table", table, "count", len(toDelete))
		if err := s.store.DeleteReferenceRows(ctx, table, toDelete); err != nil {
			return shared.NewSyncError(table, err)
		}
	}

	s.logger.Info("successfully synced reference table", "table", table)
	return nil
}
