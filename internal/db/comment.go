package db

import (
	"time"

	"gorm.io/gorm"
)

// Comment belongs to a user and, while its post exists, to a post. When
// the post is deleted the reference is nulled and the comment is kept.
type Comment struct {
	gorm.Model
	Text        string    `gorm:"not null"`
	PubDate     time.Time `gorm:"not null"`
	IsPublished bool      `gorm:"not null"`
	AuthorID    uint      `gorm:"not null;index"`
	Author      User
	PostID      *uint `gorm:"index"`
	Post        *Post
}
