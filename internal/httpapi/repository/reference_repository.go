package repository

import (
	"context"
	"fmt"

	"manhwahub/internal/httpapi/models"

	"gorm.io/gorm"
)

// ReferenceRepository exposes read access to the four reference tables
// (genres, categories, rating, status).
type ReferenceRepository interface {
	GetGenres(ctx context.Context) ([]models.Genre, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetRatings(ctx context.Context) ([]models.Rating, error)
	GetStatuses(ctx context.Context) ([]models.Status, error)

	GenreIDsByName(ctx context.Context, names []string) ([]int64, error)
	CategoryIDsByName(ctx context.Context, names []string) ([]int64, error)
	RatingIDsByName(ctx context.Context, names []string) ([]int64, error)
	StatusIDsByName(ctx context.Context, names []string) ([]int64, error)
}

// referenceRepository is the GORM implementation of ReferenceRepository.
type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) GetGenres(ctx context.Context) ([]models.Genre, error) {
	var list []models.Genre
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}
	return list, nil
}

func (r *referenceRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	var list []models.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	return list, nil
}

func (r *referenceRepository) GetRatings(ctx context.Context) ([]models.Rating, error) {
	var list []models.Rating
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get ratings: %w", err)
	}
	return list, nil
}

func (r *referenceRepository) GetStatuses(ctx context.Context) ([]models.Status, error) {
	var list []models.Status
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get statuses: %w", err)
	}
	return list, nil
}

func (r *referenceRepository) GenreIDsByName(ctx context.Context, names []string) ([]int64, error) {
	return r.idsByName(ctx, &models.Genre{}, names)
}

func (r *referenceRepository) CategoryIDsByName(ctx context.Context, names []string) ([]int64, error) {
	return r.idsByName(ctx, &models.Category{}, names)
}

func (r *referenceRepository) RatingIDsByName(ctx context.Context, names []string) ([]int64, error) {
	return r.idsByName(ctx, &models.Rating{}, names)
}

func (r *referenceRepository) StatusIDsByName(ctx context.Context, names []string) ([]int64, error) {
	return r.idsByName(ctx, &models.Status{}, names)
}

func (r *referenceRepository) idsByName(ctx context.Context, model interface{}, names []string) ([]int64, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("name IN ?", names).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("resolve reference ids: %w", err)
	}
	return ids, nil
}
