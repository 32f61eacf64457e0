package service

import (
	"errors"
	"time"

	"github.com/NikitaPolechshuk/django-sprint4/internal/db"
	"gorm.io/gorm"
)

// PageSize is the fixed page length for every post listing.
const PageSize = 10

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrNotOwner         = errors.New("acting user is not the author")
)

// CanModify reports whether the acting user may mutate content owned by
// authorID. An actor id of zero means the request is anonymous.
func CanModify(actorID, authorID uint) bool {
	return actorID != 0 && actorID == authorID
}

// commentCountExpr annotates each post row with the number of attached
// comments. Comment visibility flags are deliberately ignored here.
const commentCountExpr = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL)"

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// PostInput represents fields accepted when creating or updating a post.
// AuthorID is always taken from the session, never from the form.
type PostInput struct {
	Title       string
	Text        string
	ImageURL    string
	PubDate     time.Time
	IsPublished bool
	CategoryID  *uint
	LocationID  *uint
	AuthorID    uint
}

// PostListResult aggregates one page of posts.
type PostListResult struct {
	Posts      []db.Post
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

func (s *PostService) baseQuery() *gorm.DB {
	return s.db.Model(&db.Post{}).
		Select("posts.*, " + commentCountExpr + " AS comment_count").
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Order("posts.pub_date desc, posts.id desc")
}

// visibleOnly restricts a post query to publicly visible rows: published,
// not scheduled past asOf, and assigned to a published category. The inner
// join makes uncategorized posts fail the predicate.
func visibleOnly(query *gorm.DB, asOf time.Time) *gorm.DB {
	return query.
		Joins("JOIN categories ON categories.id = posts.category_id AND categories.deleted_at IS NULL").
		Where("posts.is_published = ? AND posts.pub_date <= ? AND categories.is_published = ?", true, asOf, true)
}

// List returns one page of publicly visible posts as of the given time.
func (s *PostService) List(asOf time.Time, page int) (*PostListResult, error) {
	countQuery := visibleOnly(s.db.Model(&db.Post{}), asOf)
	dataQuery := visibleOnly(s.baseQuery(), asOf)
	return s.paginate(countQuery, dataQuery, page)
}

// ListByAuthor returns the author's publicly visible posts. The author gets
// no bypass here; only the single-post detail read is exempt.
func (s *PostService) ListByAuthor(username string, asOf time.Time, page int) (*db.User, *PostListResult, error) {
	var user db.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	countQuery := visibleOnly(s.db.Model(&db.Post{}), asOf).Where("posts.author_id = ?", user.ID)
	dataQuery := visibleOnly(s.baseQuery(), asOf).Where("posts.author_id = ?", user.ID)
	result, err := s.paginate(countQuery, dataQuery, page)
	if err != nil {
		return nil, nil, err
	}
	return &user, result, nil
}

// ListByCategory returns visible posts of a published category. Requests
// for a missing or unpublished category fail with ErrCategoryNotFound.
func (s *PostService) ListByCategory(slug string, asOf time.Time, page int) (*db.Category, *PostListResult, error) {
	var category db.Category
	if err := s.db.Where("slug = ? AND is_published = ?", slug, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCategoryNotFound
		}
		return nil, nil, err
	}

	countQuery := visibleOnly(s.db.Model(&db.Post{}), asOf).Where("posts.category_id = ?", category.ID)
	dataQuery := visibleOnly(s.baseQuery(), asOf).Where("posts.category_id = ?", category.ID)
	result, err := s.paginate(countQuery, dataQuery, page)
	if err != nil {
		return nil, nil, err
	}
	return &category, result, nil
}

// Get fetches a single post for the given viewer. The post is returned when
// the public visibility predicate holds or when the viewer is its author;
// everything else is ErrPostNotFound.
func (s *PostService) Get(id, viewerID uint) (*db.Post, error) {
	visible := s.db.
		Where("posts.is_published = ? AND posts.pub_date <= ? AND categories.is_published = ?", true, time.Now(), true).
		Or("posts.author_id = ?", viewerID)

	var post db.Post
	err := s.baseQuery().
		Joins("LEFT JOIN categories ON categories.id = posts.category_id AND categories.deleted_at IS NULL").
		Where("posts.id = ?", id).
		Where(visible).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Create persists a new post owned by input.AuthorID.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	post := db.Post{
		Title:       input.Title,
		Text:        input.Text,
		ImageURL:    input.ImageURL,
		PubDate:     input.PubDate,
		IsPublished: input.IsPublished,
		CategoryID:  input.CategoryID,
		LocationID:  input.LocationID,
		AuthorID:    input.AuthorID,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update applies the input to an existing post after the ownership check.
// An empty ImageURL keeps the current image.
func (s *PostService) Update(id, actorID uint, input PostInput) (*db.Post, error) {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if !CanModify(actorID, post.AuthorID) {
		return nil, ErrNotOwner
	}

	post.Title = input.Title
	post.Text = input.Text
	post.PubDate = input.PubDate
	post.IsPublished = input.IsPublished
	post.CategoryID = input.CategoryID
	post.LocationID = input.LocationID
	if input.ImageURL != "" {
		post.ImageURL = input.ImageURL
	}

	if err := s.db.Save(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post after the ownership check. Comments referencing the
// post are kept with their post reference nulled.
func (s *PostService) Delete(id, actorID uint) error {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if !CanModify(actorID, post.AuthorID) {
		return ErrNotOwner
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Comment{}).Where("post_id = ?", id).Update("post_id", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&db.Post{}, id).Error
	})
}

func (s *PostService) paginate(countQuery, dataQuery *gorm.DB, page int) (*PostListResult, error) {
	result := &PostListResult{Page: page, PerPage: PageSize}
	if result.Page <= 0 {
		result.Page = 1
	}

	if err := countQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage
	if err := dataQuery.Limit(result.PerPage).Offset(offset).Find(&result.Posts).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}
	return result, nil
}
