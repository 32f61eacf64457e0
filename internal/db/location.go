package db

import "gorm.io/gorm"

// Location is an optional place a post can be tagged with. It carries its
// own published flag for the admin side but does not affect post
// visibility.
type Location struct {
	gorm.Model
	Name        string `gorm:"not null"`
	IsPublished bool   `gorm:"not null"`
}
