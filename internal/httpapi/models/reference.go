package models

// Reference tables are small lookup tables of named categorical values.
// Four independent tables with an identical shape; the singular table names
// "rating" and "status" follow the upstream spreadsheet schema.

type Genre struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}

func (Genre) TableName() string {
	return "genres"
}

type Category struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}

func (Category) TableName() string {
	return "categories"
}

type Rating struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}

func (Rating) TableName() string {
	return "rating"
}

type Status struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}

func (Status) TableName() string {
	return "status"
}
