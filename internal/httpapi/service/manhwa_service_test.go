package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"manhwahub/internal/cache"
	"manhwahub/internal/httpapi/models"
	"manhwahub/internal/httpapi/repository"
	"manhwahub/internal/shared"
)

// MockManhwaRepository mocks the ManhwaRepository interface
type MockManhwaRepository struct {
	mock.Mock
}

func (m *MockManhwaRepository) Filter(ctx context.Context, q repository.ManhwaQuery) ([]models.Manhwa, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]models.Manhwa), args.Get(1).(int64), args.Error(2)
}

func (m *MockManhwaRepository) GetByID(ctx context.Context, id int64) (*models.Manhwa, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Manhwa), args.Error(1)
}

func (m *MockManhwaRepository) IDsLinkedToAllGenres(ctx context.Context, genreIDs []int64) ([]int64, error) {
	args := m.Called(ctx, genreIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockManhwaRepository) IDsLinkedToAllCategories(ctx context.Context, categoryIDs []int64) ([]int64, error) {
	args := m.Called(ctx, categoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockManhwaRepository) ListWithoutImage(ctx context.Context) ([]models.Manhwa, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Manhwa), args.Error(1)
}

func (m *MockManhwaRepository) ListAll(ctx context.Context) ([]models.Manhwa, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Manhwa), args.Error(1)
}

func (m *MockManhwaRepository) UpdateImageURL(ctx context.Context, id int64, imageURL string) error {
	args := m.Called(ctx, id, imageURL)
	return args.Error(0)
}

// MockReferenceRepository mocks the ReferenceRepository interface
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) GetGenres(ctx context.Context) ([]models.Genre, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Genre), args.Error(1)
}

func (m *MockReferenceRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockReferenceRepository) GetRatings(ctx context.Context) ([]models.Rating, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Rating), args.Error(1)
}

func (m *MockReferenceRepository) GetStatuses(ctx context.Context) ([]models.Status, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Status), args.Error(1)
}

func (m *MockReferenceRepository) GenreIDsByName(ctx context.Context, names []string) ([]int64, error) {
	args := m.Called(ctx, names)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockReferenceRepository) CategoryIDsByName(ctx context.Context, names []string) ([]int64, error) {
	args := m.Called(ctx, names)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockReferenceRepository) RatingIDsByName(ctx context.Context, names []string) ([]int64, error) {
	args := m.Called(ctx, names)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockReferenceRepository) StatusIDsByName(ctx context.Context, names []string) ([]int64, error) {
	args := m.Called(ctx, names)
	return args.Get(0).([]int64), args.Error(1)
}

func newTestManhwaService(manhwaRepo *MockManhwaRepository, refRepo *MockReferenceRepository) ManhwaService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManhwaService(manhwaRepo, refRepo, cache.NewReferenceCache(nil, 0), logger)
}

func TestListManhwas_NoFilters(t *testing.T) {
	manhwaRepo := new(MockManhwaRepository)
	refRepo := new(MockReferenceRepository)
	svc := newTestManhwaService(manhwaRepo, refRepo)

	expected := []models.Manhwa{{ID: 1, Name: "Solo Up"}}
	manhwaRepo.On("Filter", mock.Anything, mock.MatchedBy(func(q repository.ManhwaQuery) bool {
		return q.IDs == nil && q.Page == 1 && q.PerPage == 20
	})).Return(expected, int64(1), nil)

	list, total, err := svc.ListManhwas(context.Background(), ManhwaFilter{})
	require.NoError(t, err)
	assert.Equal(t, expected, list)
	assert.Equal(t, int64(1), total)
}

func TestListManhwas_InvalidNamesGroupedByFilter(t *testing.T) {
	manhwaRepo := new(MockManhwaRepository)
	refRepo := new(MockReferenceRepository)
	svc := newTestManhwaService(manhwaRepo, refRepo)

	refRepo.On("GetGenres", mock.Anything).Return([]models.Genre{{ID: 1, Name: "Action"}}, nil)
	refRepo.On("GetStatuses", mock.Anything).Return([]models.Status{{ID: 1, Name: "Ongoing"}}, nil)

	_, _, err := svc.ListManhwas(context.Background(), ManhwaFilter{
		Genres:   []string{"Action", "Nope"},
		Statuses: []string{"Paused"},
	})
	require.Error(t, err)

	var validationErr *shared.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Nope"}, validationErr.Details["invalid_genres"])
	assert.Equal(t, []string{"Paused"}, validationErr.Details["invalid_statuses"])
	manhwaRepo.AssertNotCalled(t, "Filter", mock.Anything, mock.Anything)
}

func TestListManhwas_PaginationBounds(t *testing.T) {
	manhwaRepo := new(MockManhwaRepository)
	refRepo := new(MockReferenceRepository)
	svc := newTestManhwaService(manhwaRepo, refRepo)

	_, _, err := svc.ListManhwas(context.Background(), ManhwaFilter{Page: -1, PerPage: 500})
	require.Error(t, err)

	var validationErr *shared.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Details, "page")
	assert.Contains(t, validationErr.Details, "per_page")
}

func TestListManhwas_GenreAndCategoryIntersect(t *testing.T) {
	manhwaRepo := new(MockManhwaRepository)
	refRepo := new(MockReferenceRepository)
	svc := newTestManhwaService(manhwaRepo, refRepo)

	refRepo.On("GetGenres", mock.Anything).Return([]models.Genre{{ID: 1, Name: "Action"}}, nil)
	refRepo.On("GetCategories", mock.Anything).Return([]models.Category{{ID: 1, Name: "Regression"}}, nil)
	refRepo.On("GenreIDsByName", mock.Anything, []string{"Action"}).Return([]int64{1}, nil)
	refRepo.On("CategoryIDsByName", mock.Anything, []string{"Regression"}).Return([]int64{1}, nil)
	manhwaRepo.On("IDsLinkedToAllGenres", mock.Anything, []int64{1}).Return([]int64{10, 20, 30}, nil)
	manhwaRepo.On("IDsLinkedToAllCategories", mock.Anything, []int64{1}).Return([]int64{20, 40}, nil)
	manhwaRepo.On("Filter", mock.Anything, mock.MatchedBy(func(q repository.ManhwaQuery) bool {
		return len(q.IDs) == 1 && q.IDs[0] == 20
	})).Return([]models.Manhwa{{ID: 20}}, int64(1), nil)

	list, total, err := svc.ListManhwas(context.Background(), ManhwaFilter{
		Genres:     []string{"Action"},
		Categories: []string{"Regression"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, int64(20), list[0].ID)
}

func TestListManhwas_EmptyIntersectionShortCircuits(t *testing.T) {
	manhwaRepo := new(MockManhwaRepository)
	refRepo := new(MockReferenceRepository)
	svc := newTestManhwaService(manhwaRepo, refRepo)

	refRepo.On("GetGenres", mock.Anything).Return([]models.Genre{{ID: 1, Name: "Action"}}, nil)
	refRepo.On("GenreIDsByName", mock.Anything, []string{"Action"}).Return([]int64{1}, nil)
	manhwaRepo.On("IDsLinkedToAllGenres", mock.Anything, []int64{1}).Return([]int64{}, nil)

	list, total, err := svc.ListManhwas(context.Background(), ManhwaFilter{Genres: []string{"Action"}})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
	manhwaRepo.AssertNotCalled(t, "Filter", mock.Anything, mock.Anything)
}

func TestGetManhwa_NotFound(t *testing.T) {
	manhwaRepo := new(MockManhwaRepository)
	refRepo := new(MockReferenceRepository)
	svc := newTestManhwaService(manhwaRepo, refRepo)

	manhwaRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetManhwa(context.Background(), 99)
	assert.ErrorIs(t, err, ErrManhwaNotFound)
}
