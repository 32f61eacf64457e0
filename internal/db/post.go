package db

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog entry. PubDate may be in the future to schedule
// publication; CommentCount is annotated at query time and never stored.
// The published flags across the models carry no schema default: gorm
// omits zero-value fields with a default tag on insert, so a row created
// with an explicit false would come back published.
type Post struct {
	gorm.Model
	Title        string `gorm:"not null"`
	Text         string `gorm:"not null"`
	ImageURL     string
	PubDate      time.Time `gorm:"not null;index"`
	IsPublished  bool      `gorm:"not null"`
	AuthorID     uint      `gorm:"not null;index"`
	Author       User
	CategoryID   *uint
	Category     *Category
	LocationID   *uint
	Location     *Location
	CommentCount int64 `gorm:"->;-:migration"`
}
