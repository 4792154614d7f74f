package models

import "time"

type Manhwa struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string     `json:"name" gorm:"not null;index:idx_manhwa_key,unique"`
	Synopsis     string     `json:"synopsis" gorm:"index:idx_manhwa_key,unique"`
	YearReleased int        `json:"year_released"`
	Chapters     string     `json:"chapters"` // free-text range descriptor from the source
	ChapterMin   int        `json:"chapter_min"`
	ChapterMax   *int       `json:"chapter_max,omitempty"`
	StatusID     *int64     `json:"status_id,omitempty"`
	RatingID     *int64     `json:"rating_id,omitempty"`
	ImageURL     *string    `json:"image_url,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	// associations
	Status     *Status    `json:"status,omitempty" gorm:"foreignKey:StatusID"`
	Rating     *Rating    `json:"rating,omitempty" gorm:"foreignKey:RatingID"`
	Genres     []Genre    `json:"genres,omitempty" gorm:"many2many:manhwa_genres;"`
	Categories []Category `json:"categories,omitempty" gorm:"many2many:manhwa_categories;"`
}

func (Manhwa) TableName() string {
	return "manhwas"
}

// ManhwaGenre is the many-to-many join row between a manhwa and a genre.
// The composite unique index makes link upserts idempotent.
type ManhwaGenre struct {
	ManhwaID int64 `json:"manhwa_id" gorm:"primaryKey"`
	GenreID  int64 `json:"genre_id" gorm:"primaryKey"`
}

func (ManhwaGenre) TableName() string {
	return "manhwa_genres"
}

type ManhwaCategory struct {
	ManhwaID   int64 `json:"manhwa_id" gorm:"primaryKey"`
	CategoryID int64 `json:"category_id" gorm:"primaryKey"`
}

func (ManhwaCategory) TableName() string {
	return "manhwa_categories"
}
