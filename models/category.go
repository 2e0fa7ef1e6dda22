package models

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Image     string    `json:"image"`
	ImageKey  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
