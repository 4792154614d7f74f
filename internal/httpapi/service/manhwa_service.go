package service

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"manhwahub/internal/cache"
	"manhwahub/internal/httpapi/models"
	"manhwahub/internal/httpapi/repository"
	"manhwahub/internal/shared"
)

var ErrManhwaNotFound = errors.New("manhwa not found")

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ManhwaFilter carries the raw listing filters as received from the API.
// Reference filters are names, not ids; validation resolves and rejects them
// in one pass.
type ManhwaFilter struct {
	Genres      []string
	Categories  []string
	Statuses    []string
	Ratings     []string
	MinChapters *int
	MaxChapters *int
	MinYear     *int
	MaxYear     *int
	Page        int
	PerPage     int
}

type ManhwaService interface {
	ListManhwas(ctx context.Context, filter ManhwaFilter) ([]models.Manhwa, int64, error)
	GetManhwa(ctx context.Context, id int64) (*models.Manhwa, error)
}

type manhwaService struct {
	manhwaRepo    repository.ManhwaRepository
	referenceRepo repository.ReferenceRepository
	refCache      *cache.ReferenceCache
	logger        *slog.Logger
}

func NewManhwaService(
	manhwaRepo repository.ManhwaRepository,
	referenceRepo repository.ReferenceRepository,
	refCache *cache.ReferenceCache,
	logger *slog.Logger,
) ManhwaService {
	return &manhwaService{
		manhwaRepo:    manhwaRepo,
		referenceRepo: referenceRepo,
		refCache:      refCache,
		logger:        logger,
	}
}

// ListManhwas validates the filter, resolves reference names to ids and runs
// the catalog query. Multiple genres or categories combine with AND: a row
// must carry every requested one. Statuses and ratings combine with OR since
// a row has exactly one of each.
func (s *manhwaService) ListManhwas(ctx context.Context, filter ManhwaFilter) ([]models.Manhwa, int64, error) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PerPage == 0 {
		filter.PerPage = defaultPerPage
	}
	if err := validatePagination(filter.Page, filter.PerPage); err != nil {
		return nil, 0, err
	}
	if err := s.validateReferenceNames(ctx, filter); err != nil {
		return nil, 0, err
	}

	query := repository.ManhwaQuery{
		MinChapters: filter.MinChapters,
		MaxChapters: filter.MaxChapters,
		MinYear:     filter.MinYear,
		MaxYear:     filter.MaxYear,
		Page:        filter.Page,
		PerPage:     filter.PerPage,
	}

	var err error
	if len(filter.Statuses) > 0 {
		query.StatusIDs, err = s.referenceRepo.StatusIDsByName(ctx, filter.Statuses)
		if err != nil {
			return nil, 0, err
		}
	}
	if len(filter.Ratings) > 0 {
		query.RatingIDs, err = s.referenceRepo.RatingIDsByName(ctx, filter.Ratings)
		if err != nil {
			return nil, 0, err
		}
	}

	// association filters narrow to an explicit id set before the main query
	if len(filter.Genres) > 0 || len(filter.Categories) > 0 {
		ids, empty, err := s.resolveAssociationFilter(ctx, filter.Genres, filter.Categories)
		if err != nil {
			return nil, 0, err
		}
		if empty {
			return []models.Manhwa{}, 0, nil
		}
		query.IDs = ids
	}

	return s.manhwaRepo.Filter(ctx, query)
}

func (s *manhwaService) GetManhwa(ctx context.Context, id int64) (*models.Manhwa, error) {
	m, err := s.manhwaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManhwaNotFound
		}
		return nil, err
	}
	return m, nil
}

// resolveAssociationFilter computes the id set satisfying both the genre and
// the category AND-filters. The empty flag distinguishes "no filter" from "no
// row matches".
func (s *manhwaService) resolveAssociationFilter(ctx context.Context, genres, categories []string) ([]int64, bool, error) {
	var result []int64
	constrained := false

	if len(genres) > 0 {
		genreIDs, err := s.referenceRepo.GenreIDsByName(ctx, genres)
		if err != nil {
			return nil, false, err
		}
		ids, err := s.manhwaRepo.IDsLinkedToAllGenres(ctx, genreIDs)
		if err != nil {
			return nil, false, err
		}
		result = ids
		constrained = true
	}

	if len(categories) > 0 {
		categoryIDs, err := s.referenceRepo.CategoryIDsByName(ctx, categories)
		if err != nil {
			return nil, false, err
		}
		ids, err := s.manhwaRepo.IDsLinkedToAllCategories(ctx, categoryIDs)
		if err != nil {
			return nil, false, err
		}
		if constrained {
			result = intersect(result, ids)
		} else {
			result = ids
		}
	}

	return result, len(result) == 0, nil
}

// validateReferenceNames checks every filter name against the reference
// tables and reports all unknown values in one error, grouped by filter.
func (s *manhwaService) validateReferenceNames(ctx context.Context, filter ManhwaFilter) error {
	details := make(map[string][]string)

	checks := []struct {
		table string
		field string
		names []string
		fetch func(context.Context) ([]string, error)
	}{
		{"genres", "invalid_genres", filter.Genres, s.genreNames},
		{"categories", "invalid_categories", filter.Categories, s.categoryNames},
		{"status", "invalid_statuses", filter.Statuses, s.statusNames},
		{"rating", "invalid_ratings", filter.Ratings, s.ratingNames},
	}

	for _, c := range checks {
		if len(c.names) == 0 {
			continue
		}
		known, err := s.knownNames(ctx, c.table, c.fetch)
		if err != nil {
			return err
		}
		for _, name := range c.names {
			if !known[name] {
				details[c.field] = append(details[c.field], name)
			}
		}
	}

	if len(details) > 0 {
		return shared.NewValidationError("unknown filter values", details)
	}
	return nil
}

// knownNames returns the name set of a reference table, served from the
// cache when warm.
func (s *manhwaService) knownNames(ctx context.Context, table string, fetch func(context.Context) ([]string, error)) (map[string]bool, error) {
	names, err := s.refCache.GetNames(ctx, table)
	if err != nil {
		s.logger.Warn("reference cache read failed", "table", table, "error", err)
	}
	if len(names) == 0 {
		names, err = fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.refCache.SetNames(ctx, table, names); err != nil {
			s.logger.Warn("reference cache write failed", "table", table, "error", err)
		}
	}

	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}

func (s *manhwaService) genreNames(ctx context.Context) ([]string, error) {
	rows, err := s.referenceRepo.GetGenres(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names, nil
}

func (s *manhwaService) categoryNames(ctx context.Context) ([]string, error) {
	rows, err := s.referenceRepo.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names, nil
}

func (s *manhwaService) statusNames(ctx context.Context) ([]string, error) {
	rows, err := s.referenceRepo.GetStatuses(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names, nil
}

func (s *manhwaService) ratingNames(ctx context.Context) ([]string, error) {
	rows, err := s.referenceRepo.GetRatings(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names, nil
}

func validatePagination(page, perPage int) error {
	details := make(map[string][]string)
	if page < 1 {
		details["page"] = append(details["page"], "must be at least 1")
	}
	if perPage < 1 || perPage > maxPerPage {
		details["per_page"] = append(details["per_page"], "must be between 1 and 100")
	}
	if len(details) > 0 {
		return shared.NewValidationError("invalid pagination", details)
	}
	return nil
}

func intersect(a, b []int64) []int64 {
	inA := make(map[int64]bool, len(a))
	for _, id := range a {
		inA[id] = true
	}
	var out []int64
	for _, id := range b {
		if inA[id] {
			out = append(out, id)
		}
	}
	return out
}
