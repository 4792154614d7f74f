package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"manhwahub/internal/httpapi/dto"
	"manhwahub/internal/httpapi/service"
)

type ProgressHandler struct {
	svc service.ProgressService
}

func NewProgressHandler(svc service.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// RegisterRoutes mounts the progress routes; the group must already carry
// the auth middleware.
func (h *ProgressHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/", h.Add)
	rg.GET("/", h.List)
	rg.GET("/:manhwa_id", h.Get)
	rg.PATCH("/:manhwa_id", h.Update)
	rg.DELETE("/:manhwa_id", h.Delete)
}

func (h *ProgressHandler) Add(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.AddProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	progress, err := h.svc.SaveProgress(ctx, userID, req.ManhwaID, req.CurrentChapter, req.ReadingStatus)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromProgressToResponse(*progress))
}

func (h *ProgressHandler) List(c *gin.Context) {
	userID := c.GetString("userID")

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.ListProgress(ctx, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]dto.ProgressResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, dto.FromProgressToResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *ProgressHandler) Get(c *gin.Context) {
	userID := c.GetString("userID")
	manhwaID, ok := parseManhwaID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	progress, err := h.svc.GetProgress(ctx, userID, manhwaID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProgressToResponse(*progress))
}

func (h *ProgressHandler) Update(c *gin.Context) {
	userID := c.GetString("userID")
	manhwaID, ok := parseManhwaID(c)
	if !ok {
		return
	}

	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	progress, err := h.svc.UpdateProgress(ctx, userID, manhwaID, req.CurrentChapter, req.ReadingStatus)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProgressToResponse(*progress))
}

func (h *ProgressHandler) Delete(c *gin.Context) {
	userID := c.GetString("userID")
	manhwaID, ok := parseManhwaID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.DeleteProgress(ctx, userID, manhwaID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseManhwaID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("manhwa_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
