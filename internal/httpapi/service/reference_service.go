package service

import (
	"context"

	"manhwahub/internal/httpapi/models"
	"manhwahub/internal/httpapi/repository"
)

// ReferenceService serves the reference-table listings backing the filter
// UI (genre pickers and the like).
type ReferenceService interface {
	GetGenres(ctx context.Context) ([]models.Genre, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetRatings(ctx context.Context) ([]models.Rating, error)
	GetStatuses(ctx context.Context) ([]models.Status, error)
}

type referenceService struct {
	referenceRepo repository.ReferenceRepository
}

func NewReferenceService(referenceRepo repository.ReferenceRepository) ReferenceService {
	return &referenceService{referenceRepo: referenceRepo}
}

func (s *referenceService) GetGenres(ctx context.Context) ([]models.Genre, error) {
	return s.referenceRepo.GetGenres(ctx)
}

func (s *referenceService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.referenceRepo.GetCategories(ctx)
}

func (s *referenceService) GetRatings(ctx context.Context) ([]models.Rating, error) {
	return s.referenceRepo.GetRatings(ctx)
}

func (s *referenceService) GetStatuses(ctx context.Context) ([]models.Status, error) {
	return s.referenceRepo.GetStatuses(ctx)
}
