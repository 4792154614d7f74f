package models

import "time"

// Reading statuses a user can assign to a manhwa.
const (
	ReadingStatusPlanning  = "planning"
	ReadingStatusReading   = "reading"
	ReadingStatusCompleted = "completed"
	ReadingStatusDropped   = "dropped"
	ReadingStatusOnHold    = "on_hold"
)

// ValidReadingStatus reports whether s is one of the allowed reading statuses.
func ValidReadingStatus(s string) bool {
	switch s {
	case ReadingStatusPlanning, ReadingStatusReading, ReadingStatusCompleted,
		ReadingStatusDropped, ReadingStatusOnHold:
		return true
	}
	return false
}

// UserProgress represents the progress of a user reading a manhwa.
// At most one row per (user, manhwa); never touched by catalog sync.
type UserProgress struct {
	UserID         string    `gorm:"type:uuid;not null;primaryKey;index:idx_user_manhwa" json:"user_id"`
	ManhwaID       int64     `gorm:"not null;primaryKey;index:idx_user_manhwa" json:"manhwa_id"`
	CurrentChapter int       `gorm:"default:0" json:"current_chapter"`
	ReadingStatus  string    `gorm:"type:text" json:"reading_status"`
	UpdatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Manhwa *Manhwa `gorm:"foreignKey:ManhwaID" json:"manhwa,omitempty"`
}

// TableName overrides the table name used by UserProgress
func (UserProgress) TableName() string {
	return "user_manhwa_progress"
}
