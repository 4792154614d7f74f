package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"manhwahub/internal/httpapi/service"
)

// SyncHandler exposes the maintenance triggers. All routes sit behind the
// API-key middleware and return 202 once the background run is launched.
type SyncHandler struct {
	svc service.SyncService
}

func NewSyncHandler(svc service.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.Sync)
	rg.POST("/images/backfill", h.ImageBackfill)
	rg.POST("/images/refresh", h.ImageRefresh)
}

func (h *SyncHandler) Sync(c *gin.Context) {
	if err := h.svc.TriggerSync(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "sync started"})
}

func (h *SyncHandler) ImageBackfill(c *gin.Context) {
	if err := h.svc.TriggerImageBackfill(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "image backfill started"})
}

func (h *SyncHandler) ImageRefresh(c *gin.Context) {
	if err := h.svc.TriggerImageRefresh(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "image refresh started"})
}
