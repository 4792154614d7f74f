package repository

import (
	"context"
	"fmt"

	"manhwahub/internal/httpapi/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository handles database operations for user reading progress.
type ProgressRepository interface {
	Upsert(ctx context.Context, progress *models.UserProgress) error
	Get(ctx context.Context, userID string, manhwaID int64) (*models.UserProgress, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserProgress, error)
	Delete(ctx context.Context, userID string, manhwaID int64) error
}

// progressRepository is the GORM implementation of ProgressRepository.
type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, progress *models.UserProgress) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "manhwa_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"current_chapter", "reading_status", "updated_at"}),
		}).
		Create(progress).Error; err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (r *progressRepository) Get(ctx context.Context, userID string, manhwaID int64) (*models.UserProgress, error) {
	var p models.UserProgress
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND manhwa_id = ?", userID, manhwaID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *progressRepository) ListByUser(ctx context.Context, userID string) ([]models.UserProgress, error) {
	var list []models.UserProgress
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Manhwa").
		Preload("Manhwa.Genres").
		Preload("Manhwa.Categories").
		Preload("Manhwa.Status").
		Preload("Manhwa.Rating").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return list, nil
}

func (r *progressRepository) Delete(ctx context.Context, userID string, manhwaID int64) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND manhwa_id = ?", userID, manhwaID).
		Delete(&models.UserProgress{}).Error; err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}
