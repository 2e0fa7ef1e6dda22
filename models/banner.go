package models

import "time"

// Banner is a promotional carousel slide. Lower Position is shown first.
type Banner struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle"`
	ImageURL      string    `gorm:"not null" json:"image_url"`
	StorageKey    string    `json:"-"`
	LinkURL       string    `json:"link_url"`
	ButtonCaption string    `json:"button_caption"`
	Position      int       `gorm:"index" json:"position"`
	IsActive      bool      `gorm:"index" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
