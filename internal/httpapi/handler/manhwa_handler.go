package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"manhwahub/internal/httpapi/dto"
	"manhwahub/internal/httpapi/service"
	"manhwahub/internal/shared"
)

const requestTimeout = 5 * time.Second

type ManhwaHandler struct {
	svc service.ManhwaService
}

func NewManhwaHandler(svc service.ManhwaService) *ManhwaHandler {
	return &ManhwaHandler{svc: svc}
}

func (h *ManhwaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.List)
	rg.GET("/:manhwa_id", h.Get)
}

// List serves the filtered catalog listing. Reference filters accept either
// repeated query params or one comma-separated value.
func (h *ManhwaHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	filter := service.ManhwaFilter{
		Genres:     queryList(c, "genres"),
		Categories: queryList(c, "categories"),
		Statuses:   queryList(c, "statuses"),
		Ratings:    queryList(c, "ratings"),
	}

	var parseErrs []string
	filter.MinChapters = queryInt(c, "min_chapters", &parseErrs)
	filter.MaxChapters = queryInt(c, "max_chapters", &parseErrs)
	filter.MinYear = queryInt(c, "min_year", &parseErrs)
	filter.MaxYear = queryInt(c, "max_year", &parseErrs)
	if p := queryInt(c, "page", &parseErrs); p != nil {
		filter.Page = *p
	}
	if pp := queryInt(c, "per_page", &parseErrs); pp != nil {
		filter.PerPage = *pp
	}
	if len(parseErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid query parameters",
			"details": gin.H{"numeric": parseErrs},
		})
		return
	}

	list, total, err := h.svc.ListManhwas(ctx, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]dto.ManhwaResponse, 0, len(list))
	for _, m := range list {
		resp = append(resp, dto.FromModelToResponse(m))
	}

	page, perPage := filter.Page, filter.PerPage
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = 20
	}
	c.JSON(http.StatusOK, dto.ManhwaListResponse{
		Data:       resp,
		Pagination: dto.NewPagination(page, perPage, total),
	})
}

func (h *ManhwaHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("manhwa_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	m, err := h.svc.GetManhwa(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToResponse(*m))
}

// queryList collects a filter's values, splitting comma-separated entries.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func queryInt(c *gin.Context, key string, parseErrs *[]string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*parseErrs = append(*parseErrs, key)
		return nil
	}
	return &n
}

// respondServiceError maps service errors to HTTP statuses. Unexpected
// errors stay generic so internals never leak to clients.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *shared.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"details": validationErr.Details,
		})
	case errors.Is(err, service.ErrManhwaNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "manhwa not found"})
	case errors.Is(err, service.ErrProgressNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "progress not found"})
	case errors.Is(err, service.ErrSyncRunning):
		c.JSON(http.StatusConflict, gin.H{"error": "a sync run is already in progress"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
