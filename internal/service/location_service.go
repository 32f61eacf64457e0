package service

import (
	"errors"
	"strings"

	"github.com/NikitaPolechshuk/django-sprint4/internal/db"
	"gorm.io/gorm"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrLocationName     = errors.New("location name is required")
)

// LocationService wraps location related operations.
type LocationService struct {
	db *gorm.DB
}

// NewLocationService creates a LocationService instance.
func NewLocationService(gdb *gorm.DB) *LocationService {
	return &LocationService{db: gdb}
}

// ListPublished returns published locations for the post form select.
func (s *LocationService) ListPublished() ([]db.Location, error) {
	var locations []db.Location
	if err := s.db.Where("is_published = ?", true).
		Order("name asc, id asc").
		Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// Create inserts a new location.
func (s *LocationService) Create(name string) (*db.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLocationName
	}

	location := db.Location{Name: name, IsPublished: true}
	if err := s.db.Create(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

// Delete removes a location and unsets it on every referencing post.
func (s *LocationService) Delete(id uint) error {
	var location db.Location
	if err := s.db.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLocationNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Post{}).Where("location_id = ?", id).Update("location_id", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&location).Error
	})
}
