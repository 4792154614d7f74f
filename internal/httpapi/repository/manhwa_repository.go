package repository

import (
	"context"
	"fmt"

	"manhwahub/internal/httpapi/models"

	"gorm.io/gorm"
)

// ManhwaQuery carries the resolved (post-validation) filter constraints for a
// catalog listing. Nil slices and nil bounds mean "unconstrained".
type ManhwaQuery struct {
	IDs         []int64 // pre-computed AND-filter result; nil = no genre/category filter
	StatusIDs   []int64
	RatingIDs   []int64
	MinChapters *int
	MaxChapters *int
	MinYear     *int
	MaxYear     *int
	Page        int
	PerPage     int
}

// ManhwaRepository defines catalog read/write operations used by the API and
// the image updater.
type ManhwaRepository interface {
	Filter(ctx context.Context, q ManhwaQuery) ([]models.Manhwa, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Manhwa, error)

	// AND-semantics association lookups: a manhwa id qualifies only when it is
	// linked to every one of the given reference ids.
	IDsLinkedToAllGenres(ctx context.Context, genreIDs []int64) ([]int64, error)
	IDsLinkedToAllCategories(ctx context.Context, categoryIDs []int64) ([]int64, error)

	// image backfill support
	ListWithoutImage(ctx context.Context) ([]models.Manhwa, error)
	ListAll(ctx context.Context) ([]models.Manhwa, error)
	UpdateImageURL(ctx context.Context, id int64, imageURL string) error
}

// manhwaRepository is the GORM implementation of ManhwaRepository.
type manhwaRepository struct {
	db *gorm.DB
}

func NewManhwaRepository(db *gorm.DB) ManhwaRepository {
	return &manhwaRepository{db: db}
}

func (r *manhwaRepository) Filter(ctx context.Context, q ManhwaQuery) ([]models.Manhwa, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Manhwa{})

	if q.IDs != nil {
		base = base.Where("id IN ?", q.IDs)
	}
	if len(q.StatusIDs) > 0 {
		base = base.Where("status_id IN ?", q.StatusIDs)
	}
	if len(q.RatingIDs) > 0 {
		base = base.Where("rating_id IN ?", q.RatingIDs)
	}
	if q.MinChapters != nil {
		base = base.Where("chapter_min >= ?", *q.MinChapters)
	}
	if q.MaxChapters != nil {
		// rows without an explicit upper bound fall back to chapter_min
		base = base.Where("COALESCE(chapter_max, chapter_min) <= ?", *q.MaxChapters)
	}
	if q.MinYear != nil {
		base = base.Where("year_released >= ?", *q.MinYear)
	}
	if q.MaxYear != nil {
		base = base.Where("year_released <= ?", *q.MaxYear)
	}

	// Count total records
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count manhwas: %w", err)
	}

	// Fetch paginated results
	offset := (q.Page - 1) * q.PerPage
	var list []models.Manhwa
	if err := base.
		Preload("Genres").
		Preload("Categories").
		Preload("Status").
		Preload("Rating").
		Order("name asc").
		Limit(q.PerPage).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("filter manhwas: %w", err)
	}

	return list, total, nil
}

func (r *manhwaRepository) GetByID(ctx context.Context, id int64) (*models.Manhwa, error) {
	var m models.Manhwa
	if err := r.db.WithContext(ctx).
		Preload("Genres").
		Preload("Categories").
		Preload("Status").
		Preload("Rating").
		First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *manhwaRepository) IDsLinkedToAllGenres(ctx context.Context, genreIDs []int64) ([]int64, error) {
	if len(genreIDs) == 0 {
		return nil, nil
	}
	var links []models.ManhwaGenre
	if err := r.db.WithContext(ctx).
		Where("genre_id IN ?", genreIDs).
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("get manhwa ids by genres: %w", err)
	}

	counts := make(map[int64]int, len(links))
	for _, l := range links {
		counts[l.ManhwaID]++
	}

	// keep only manhwas that matched *all* requested genres
	ids := make([]int64, 0, len(counts))
	for manhwaID, c := range counts {
		if c == len(genreIDs) {
			ids = append(ids, manhwaID)
		}
	}
	return ids, nil
}

func (r *manhwaRepository) IDsLinkedToAllCategories(ctx context.Context, categoryIDs []int64) ([]int64, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	var links []models.ManhwaCategory
	if err := r.db.WithContext(ctx).
		Where("category_id IN ?", categoryIDs).
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("get manhwa ids by categories: %w", err)
	}

	counts := make(map[int64]int, len(links))
	for _, l := range links {
		counts[l.ManhwaID]++
	}

	ids := make([]int64, 0, len(counts))
	for manhwaID, c := range counts {
		if c == len(categoryIDs) {
			ids = append(ids, manhwaID)
		}
	}
	return ids, nil
}

func (r *manhwaRepository) ListWithoutImage(ctx context.Context) ([]models.Manhwa, error) {
	var list []models.Manhwa
	if err := r.db.WithContext(ctx).
		Where("image_url IS NULL OR image_url = ''").
		Order("id asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list manhwas without image: %w", err)
	}
	return list, nil
}

func (r *manhwaRepository) ListAll(ctx context.Context) ([]models.Manhwa, error) {
	var list []models.Manhwa
	if err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list manhwas: %w", err)
	}
	return list, nil
}

func (r *manhwaRepository) UpdateImageURL(ctx context.Context, id int64, imageURL string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Manhwa{}).
		Where("id = ?", id).
		Update("image_url", imageURL).Error; err != nil {
		return fmt.Errorf("update image url: %w", err)
	}
	return nil
}
