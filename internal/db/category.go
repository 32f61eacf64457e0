package db

import "gorm.io/gorm"

// Category groups posts under a URL-safe slug. Unpublished categories hide
// every post assigned to them.
type Category struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Slug        string `gorm:"unique;not null"`
	Description string
	IsPublished bool `gorm:"not null"`
}
