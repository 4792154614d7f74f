package dto

import (
	"manhwahub/internal/httpapi/models"
)

// ManhwaResponse flattens reference associations to plain names for clients.
type ManhwaResponse struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Synopsis     string   `json:"synopsis"`
	YearReleased int      `json:"year_released"`
	Chapters     string   `json:"chapters"`
	ChapterMin   int      `json:"chapter_min"`
	ChapterMax   *int     `json:"chapter_max,omitempty"`
	ImageURL     *string  `json:"image_url,omitempty"`
	Status       string   `json:"status,omitempty"`
	Rating       string   `json:"rating,omitempty"`
	Genres       []string `json:"genres"`
	Categories   []string `json:"categories"`
}

// Pagination is the common offset-based pagination envelope.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// ManhwaListResponse is the response body for the catalog listing endpoint.
type ManhwaListResponse struct {
	Data       []ManhwaResponse `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// Converters
func FromModelToResponse(m models.Manhwa) ManhwaResponse {
	resp := ManhwaResponse{
		ID:           m.ID,
		Name:         m.Name,
		Synopsis:     m.Synopsis,
		YearReleased: m.YearReleased,
		Chapters:     m.Chapters,
		ChapterMin:   m.ChapterMin,
		ChapterMax:   m.ChapterMax,
		ImageURL:     m.ImageURL,
		Genres:       make([]string, 0, len(m.Genres)),
		Categories:   make([]string, 0, len(m.Categories)),
	}
	if m.Status != nil {
		resp.Status = m.Status.Name
	}
	if m.Rating != nil {
		resp.Rating = m.Rating.Name
	}
	for _, g := range m.Genres {
		resp.Genres = append(resp.Genres, g.Name)
	}
	for _, c := range m.Categories {
		resp.Categories = append(resp.Categories, c.Name)
	}
	return resp
}

// NewPagination computes total_pages from a row count and page size.
func NewPagination(page, perPage int, total int64) Pagination {
	totalPages := int64(0)
	if perPage > 0 {
		totalPages = (total + int64(perPage) - 1) / int64(perPage)
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}
