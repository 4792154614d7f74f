package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"manhwahub/internal/httpapi/models"
	"manhwahub/internal/httpapi/repository"
	"manhwahub/internal/shared"
)

var ErrProgressNotFound = errors.New("progress not found")

type ProgressService interface {
	SaveProgress(ctx context.Context, userID string, manhwaID int64, currentChapter int, readingStatus string) (*models.UserProgress, error)
	UpdateProgress(ctx context.Context, userID string, manhwaID int64, currentChapter *int, readingStatus *string) (*models.UserProgress, error)
	GetProgress(ctx context.Context, userID string, manhwaID int64) (*models.UserProgress, error)
	ListProgress(ctx context.Context, userID string) ([]models.UserProgress, error)
	DeleteProgress(ctx context.Context, userID string, manhwaID int64) error
}

type progressService struct {
	progressRepo repository.ProgressRepository
	manhwaRepo   repository.ManhwaRepository
}

func NewProgressService(progressRepo repository.ProgressRepository, manhwaRepo repository.ManhwaRepository) ProgressService {
	return &progressService{progressRepo: progressRepo, manhwaRepo: manhwaRepo}
}

// SaveProgress creates or replaces the user's progress entry for a manhwa.
func (s *progressService) SaveProgress(ctx context.Context, userID string, manhwaID int64, currentChapter int, readingStatus string) (*models.UserProgress, error) {
	if err := validateProgressFields(&currentChapter, &readingStatus); err != nil {
		return nil, err
	}
	// the foreign key would catch this too, but a clean not-found error beats
	// a constraint violation surfacing as a 500
	if _, err := s.manhwaRepo.GetByID(ctx, manhwaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManhwaNotFound
		}
		return nil, err
	}

	progress := &models.UserProgress{
		UserID:         userID,
		ManhwaID:       manhwaID,
		CurrentChapter: currentChapter,
		ReadingStatus:  readingStatus,
		UpdatedAt:      time.Now(),
	}
	if err := s.progressRepo.Upsert(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// UpdateProgress applies a partial update to an existing entry. Nil fields
// keep their stored values.
func (s *progressService) UpdateProgress(ctx context.Context, userID string, manhwaID int64, currentChapter *int, readingStatus *string) (*models.UserProgress, error) {
	if err := validateProgressFields(currentChapter, readingStatus); err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.Get(ctx, userID, manhwaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}

	if currentChapter != nil {
		progress.CurrentChapter = *currentChapter
	}
	if readingStatus != nil {
		progress.ReadingStatus = *readingStatus
	}
	progress.UpdatedAt = time.Now()

	if err := s.progressRepo.Upsert(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID string, manhwaID int64) (*models.UserProgress, error) {
	progress, err := s.progressRepo.Get(ctx, userID, manhwaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return progress, nil
}

func (s *progressService) ListProgress(ctx context.Context, userID string) ([]models.UserProgress, error) {
	return s.progressRepo.ListByUser(ctx, userID)
}

func (s *progressService) DeleteProgress(ctx context.Context, userID string, manhwaID int64) error {
	if _, err := s.progressRepo.Get(ctx, userID, manhwaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgressNotFound
		}
		return err
	}
	return s.progressRepo.Delete(ctx, userID, manhwaID)
}

func validateProgressFields(currentChapter *int, readingStatus *string) error {
	details := make(map[string][]string)
	if currentChapter != nil && *currentChapter < 0 {
		details["current_chapter"] = append(details["current_chapter"], "must be zero or positive")
	}
	if readingStatus != nil && !models.ValidReadingStatus(*readingStatus) {
		details["reading_status"] = append(details["reading_status"], "must be one of planning, reading, completed, dropped, on_hold")
	}
	if len(details) > 0 {
		return shared.NewValidationError("invalid progress fields", details)
	}
	return nil
}
