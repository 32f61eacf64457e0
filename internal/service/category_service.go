package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/NikitaPolechshuk/django-sprint4/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCategoryExists = errors.New("category slug already exists")
	ErrCategoryInUse  = errors.New("category is referenced by posts")
	ErrInvalidSlug    = errors.New("slug may contain only letters, numbers, hyphens and underscores")
)

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// CategoryService wraps category related operations.
type CategoryService struct {
	db *gorm.DB
}

// CategoryInput carries the editable category fields.
type CategoryInput struct {
	Title       string
	Slug        string
	Description string
	IsPublished bool
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// ListPublished returns published categories for navigation and the post
// form select, ordered by title.
func (s *CategoryService) ListPublished() ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.Where("is_published = ?", true).
		Order("title asc, id asc").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetPublished fetches a category by slug. Missing and unpublished
// categories are indistinguishable to callers.
func (s *CategoryService) GetPublished(slug string) (*db.Category, error) {
	var category db.Category
	err := s.db.Where("slug = ? AND is_published = ?", slug, true).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Create inserts a new category with a unique, URL-safe slug.
func (s *CategoryService) Create(input CategoryInput) (*db.Category, error) {
	slug, err := s.normalizeSlug(input.Slug, 0)
	if err != nil {
		return nil, err
	}

	category := db.Category{
		Title:       strings.TrimSpace(input.Title),
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		IsPublished: input.IsPublished,
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Update changes a category while keeping the slug unique.
func (s *CategoryService) Update(id uint, input CategoryInput) (*db.Category, error) {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	slug, err := s.normalizeSlug(input.Slug, id)
	if err != nil {
		return nil, err
	}

	category.Title = strings.TrimSpace(input.Title)
	category.Slug = slug
	category.Description = strings.TrimSpace(input.Description)
	category.IsPublished = input.IsPublished
	if err := s.db.Save(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category only when no post references it. Posts are
// never orphaned silently.
func (s *CategoryService) Delete(id uint) error {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	var count int64
	if err := s.db.Model(&db.Post{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	return s.db.Unscoped().Delete(&category).Error
}

func (s *CategoryService) normalizeSlug(slug string, selfID uint) (string, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return "", ErrInvalidSlug
	}

	var existing db.Category
	if err := s.db.Where("slug = ? AND id <> ?", slug, selfID).First(&existing).Error; err == nil {
		return "", ErrCategoryExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return slug, nil
}
