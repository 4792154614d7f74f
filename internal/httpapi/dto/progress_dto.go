package dto

import (
	"time"

	"manhwahub/internal/httpapi/models"
)

// AddProgressRequest: payload for creating (or upserting) a progress row
type AddProgressRequest struct {
	ManhwaID       int64  `json:"manhwa_id" binding:"required"`
	CurrentChapter int    `json:"current_chapter" binding:"min=0"`
	ReadingStatus  string `json:"reading_status" binding:"required"`
}

// UpdateProgressRequest: payload for PATCH /api/progress/:manhwa_id
type UpdateProgressRequest struct {
	CurrentChapter *int    `json:"current_chapter" binding:"omitempty,min=0"`
	ReadingStatus  *string `json:"reading_status"`
}

// ProgressResponse pairs a progress row with the flattened manhwa details.
type ProgressResponse struct {
	CurrentChapter int             `json:"current_chapter"`
	ReadingStatus  string          `json:"reading_status"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Manhwa         *ManhwaResponse `json:"manhwa,omitempty"`
}

func FromProgressToResponse(p models.UserProgress) ProgressResponse {
	resp := ProgressResponse{
		CurrentChapter: p.CurrentChapter,
		ReadingStatus:  p.ReadingStatus,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Manhwa != nil {
		m := FromModelToResponse(*p.Manhwa)
		resp.Manhwa = &m
	}
	return resp
}
