package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"manhwahub/internal/httpapi/models"
	"manhwahub/internal/ingestion/reconcile"
)

// insertBatchSize caps the row count per bulk INSERT.
const insertBatchSize = 500

// SyncRepo is the gorm-backed store used by the reconciliation engine. It
// addresses the reference tables by name so one implementation serves genres,
// categories, rating and status.
type SyncRepo struct {
	db *gorm.DB
}

func NewSyncRepo(db *gorm.DB) *SyncRepo {
	return &SyncRepo{db: db}
}

var _ reconcile.Store = (*SyncRepo)(nil)

// referenceRecord is the write shape for the reference tables; the primary
// key tag keeps gorm from inserting explicit zero ids and backfills assigned
// ids on insert.
type referenceRecord struct {
	ID          int64 `gorm:"primaryKey"`
	Name        string
	Description string
}

func toReferenceRecords(rows []reconcile.ReferenceRow) []referenceRecord {
	records := make([]referenceRecord, len(rows))
	for i, row := range rows {
		records[i] = referenceRecord(row)
	}
	return records
}

func toReferenceRows(records []referenceRecord) []reconcile.ReferenceRow {
	rows := make([]reconcile.ReferenceRow, len(records))
	for i, record := range records {
		rows[i] = reconcile.ReferenceRow(record)
	}
	return rows
}

func (r *SyncRepo) FetchReferencePage(ctx context.Context, table string, offset, limit int) ([]reconcile.ReferenceRow, error) {
	var records []referenceRecord
	err := r.db.WithContext(ctx).
		Table(table).
		Select("id", "name", "description").
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return toReferenceRows(records), nil
}

func (r *SyncRepo) InsertReferenceRows(ctx context.Context, table string, rows []reconcile.ReferenceRow) ([]reconcile.ReferenceRow, error) {
	records := toReferenceRecords(rows)
	if err := r.db.WithContext(ctx).Table(table).CreateInBatches(&records, insertBatchSize).Error; err != nil {
		return nil, err
	}
	return toReferenceRows(records), nil
}

func (r *SyncRepo) UpsertReferenceRows(ctx context.Context, table string, rows []reconcile.ReferenceRow) error {
	records := toReferenceRecords(rows)
	return r.db.WithContext(ctx).
		Table(table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description"}),
		}).
		CreateInBatches(&records, insertBatchSize).Error
}

func (r *SyncRepo) DeleteReferenceRows(ctx context.Context, table string, ids []int64) error {
	return r.db.WithContext(ctx).Table(table).Where("id IN ?", ids).Delete(&referenceRecord{}).Error
}

func (r *SyncRepo) FetchCatalogPage(ctx context.Context, offset, limit int) ([]models.Manhwa, error) {
	var rows []models.Manhwa
	err := r.db.WithContext(ctx).
		Select("id", "name", "synopsis").
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SyncRepo) InsertManhwas(ctx context.Context, rows []models.Manhwa) ([]models.Manhwa, error) {
	if err := r.db.WithContext(ctx).
		Omit("Genres", "Categories", "Status", "Rating").
		CreateInBatches(&rows, insertBatchSize).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertManhwas updates rows in place keyed on id. image_url and created_at
// are deliberately left out of the assignment list so a sync run never wipes
// a backfilled cover image.
func (r *SyncRepo) UpsertManhwas(ctx context.Context, rows []models.Manhwa) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "synopsis", "year_released", "chapters",
				"chapter_min", "chapter_max", "status_id", "rating_id",
			}),
		}).
		Omit("Genres", "Categories", "Status", "Rating").
		CreateInBatches(&rows, insertBatchSize).Error
}

func (r *SyncRepo) DeleteManhwas(ctx context.Context, ids []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("manhwa_id IN ?", ids).Delete(&models.ManhwaGenre{}).Error; err != nil {
			return err
		}
		if err := tx.Where("manhwa_id IN ?", ids).Delete(&models.ManhwaCategory{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Manhwa{}).Error
	})
}

func (r *SyncRepo) UpsertGenreLinks(ctx context.Context, links []models.ManhwaGenre) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&links, insertBatchSize).Error
}

func (r *SyncRepo) UpsertCategoryLinks(ctx context.Context, links []models.ManhwaCategory) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&links, insertBatchSize).Error
}

func (r *SyncRepo) PruneGenreLinks(ctx context.Context, manhwaID int64, keep []int64) error {
	q := r.db.WithContext(ctx).Where("manhwa_id = ?", manhwaID)
	if len(keep) > 0 {
		q = q.Where("genre_id NOT IN ?", keep)
	}
	return q.Delete(&models.ManhwaGenre{}).Error
}

func (r *SyncRepo) PruneCategoryLinks(ctx context.Context, manhwaID int64, keep []int64) error {
	q := r.db.WithContext(ctx).Where("manhwa_id = ?", manhwaID)
	if len(keep) > 0 {
		q = q.Where("category_id NOT IN ?", keep)
	}
	return q.Delete(&models.ManhwaCategory{}).Error
}
