package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"manhwahub/internal/httpapi/dto"
	"manhwahub/internal/httpapi/handler"
	"manhwahub/internal/httpapi/models"
	"manhwahub/internal/httpapi/service"
)

type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) SaveProgress(ctx context.Context, userID string, manhwaID int64, currentChapter int, readingStatus string) (*models.UserProgress, error) {
	args := m.Called(ctx, userID, manhwaID, currentChapter, readingStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressService) UpdateProgress(ctx context.Context, userID string, manhwaID int64, currentChapter *int, readingStatus *string) (*models.UserProgress, error) {
	args := m.Called(ctx, userID, manhwaID, currentChapter, readingStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressService) GetProgress(ctx context.Context, userID string, manhwaID int64) (*models.UserProgress, error) {
	args := m.Called(ctx, userID, manhwaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressService) ListProgress(ctx context.Context, userID string) ([]models.UserProgress, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.UserProgress), args.Error(1)
}

func (m *MockProgressService) DeleteProgress(ctx context.Context, userID string, manhwaID int64) error {
	args := m.Called(ctx, userID, manhwaID)
	return args.Error(0)
}

// setupProgressRouter injects a fixed user id the way the auth middleware
// would after validating a token.
func setupProgressRouter(svc service.ProgressService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api/progress", func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	handler.NewProgressHandler(svc).RegisterRoutes(group)
	return r
}

func TestAddProgress_Success(t *testing.T) {
	mockSvc := new(MockProgressService)
	r := setupProgressRouter(mockSvc, "u1")

	mockSvc.On("SaveProgress", mock.Anything, "u1", int64(1), 12, "reading").Return(&models.UserProgress{
		UserID:         "u1",
		ManhwaID:       1,
		CurrentChapter: 12,
		ReadingStatus:  "reading",
		UpdatedAt:      time.Now(),
	}, nil)

	body, _ := json.Marshal(dto.AddProgressRequest{
		ManhwaID:       1,
		CurrentChapter: 12,
		ReadingStatus:  "reading",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/progress/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp dto.ProgressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.CurrentChapter)
	assert.Equal(t, "reading", resp.ReadingStatus)
}

func TestAddProgress_UnknownManhwa(t *testing.T) {
	mockSvc := new(MockProgressService)
	r := setupProgressRouter(mockSvc, "u1")

	mockSvc.On("SaveProgress", mock.Anything, "u1", int64(99), 0, "planning").
		Return(nil, service.ErrManhwaNotFound)

	body, _ := json.Marshal(dto.AddProgressRequest{ManhwaID: 99, ReadingStatus: "planning"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/progress/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProgress_EmbedsManhwa(t *testing.T) {
	mockSvc := new(MockProgressService)
	r := setupProgressRouter(mockSvc, "u1")

	mockSvc.On("ListProgress", mock.Anything, "u1").Return([]models.UserProgress{
		{
			UserID:         "u1",
			ManhwaID:       1,
			CurrentChapter: 3,
			ReadingStatus:  "reading",
			Manhwa:         &models.Manhwa{ID: 1, Name: "Solo Up"},
		},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/progress/", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []dto.ProgressResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Data[0].Manhwa)
	assert.Equal(t, "Solo Up", resp.Data[0].Manhwa.Name)
}

func TestUpdateProgress_PartialBody(t *testing.T) {
	mockSvc := new(MockProgressService)
	r := setupProgressRouter(mockSvc, "u1")

	mockSvc.On("UpdateProgress", mock.Anything, "u1", int64(1),
		mock.MatchedBy(func(ch *int) bool { return ch != nil && *ch == 42 }),
		(*string)(nil),
	).Return(&models.UserProgress{
		UserID:         "u1",
		ManhwaID:       1,
		CurrentChapter: 42,
		ReadingStatus:  "reading",
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/api/progress/1", bytes.NewReader([]byte(`{"current_chapter":42}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteProgress_NoContent(t *testing.T) {
	mockSvc := new(MockProgressService)
	r := setupProgressRouter(mockSvc, "u1")

	mockSvc.On("DeleteProgress", mock.Anything, "u1", int64(1)).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/progress/1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGetProgress_NotFound(t *testing.T) {
	mockSvc := new(MockProgressService)
	r := setupProgressRouter(mockSvc, "u1")

	mockSvc.On("GetProgress", mock.Anything, "u1", int64(5)).Return(nil, service.ErrProgressNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/progress/5", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
