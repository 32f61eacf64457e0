package db

import "gorm.io/gorm"

// User is a registered author. Posts and comments belong to exactly one
// user and are removed together with it.
type User struct {
	gorm.Model
	Username  string `gorm:"unique;not null"`
	FirstName string
	LastName  string
	Email     string
	Password  string `gorm:"not null"`
}

// FullName joins the optional name fields for display, falling back to
// the username.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}
