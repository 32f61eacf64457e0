package service

import (
	"errors"
	"strings"
	"time"

	"github.com/NikitaPolechshuk/django-sprint4/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrTextRequired    = errors.New("comment text is required")
	ErrPubDateRequired = errors.New("comment publication date is required")
)

// CommentService wraps comment related database operations.
type CommentService struct {
	db *gorm.DB
}

// CommentInput carries the editable comment fields. PubDate comes from the
// submitted form and is a validation error when missing, not defaulted.
type CommentInput struct {
	Text        string
	PubDate     time.Time
	IsPublished bool
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// ListForPost returns every comment attached to a post in creation order.
// Comment is_published flags do not filter the read path.
func (s *CommentService) ListForPost(postID uint) ([]db.Comment, error) {
	var comments []db.Comment
	err := s.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at asc, id asc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Get fetches a comment by id with its author preloaded.
func (s *CommentService) Get(id uint) (*db.Comment, error) {
	var comment db.Comment
	if err := s.db.Preload("Author").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// Create attaches a new comment to the post. The post existence is
// re-checked even though the id arrived via the URL path.
func (s *CommentService) Create(postID, authorID uint, input CommentInput) (*db.Comment, error) {
	if err := validateCommentInput(input); err != nil {
		return nil, err
	}

	var post db.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := db.Comment{
		Text:        strings.TrimSpace(input.Text),
		PubDate:     input.PubDate,
		IsPublished: input.IsPublished,
		AuthorID:    authorID,
		PostID:      &post.ID,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update applies the input to an existing comment after the ownership
// check.
func (s *CommentService) Update(id, actorID uint, input CommentInput) (*db.Comment, error) {
	if err := validateCommentInput(input); err != nil {
		return nil, err
	}

	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if !CanModify(actorID, comment.AuthorID) {
		return nil, ErrNotOwner
	}

	comment.Text = strings.TrimSpace(input.Text)
	comment.PubDate = input.PubDate
	comment.IsPublished = input.IsPublished
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes a comment after the ownership check.
func (s *CommentService) Delete(id, actorID uint) error {
	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if !CanModify(actorID, comment.AuthorID) {
		return ErrNotOwner
	}

	return s.db.Unscoped().Delete(&db.Comment{}, id).Error
}

func validateCommentInput(input CommentInput) error {
	if strings.TrimSpace(input.Text) == "" {
		return ErrTextRequired
	}
	if input.PubDate.IsZero() {
		return ErrPubDateRequired
	}
	return nil
}
