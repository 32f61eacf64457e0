package handler

import (
	"errors"
	"net/http"

	"github.com/NikitaPolechshuk/django-sprint4/internal/db"
	"github.com/NikitaPolechshuk/django-sprint4/internal/service"
	"github.com/gin-gonic/gin"
)

func (a *API) commentFormInput(c *gin.Context) (service.CommentInput, string) {
	input := service.CommentInput{
		Text:        c.PostForm("text"),
		IsPublished: c.DefaultPostForm("is_published", "on") != "",
	}

	raw := c.PostForm("pub_date")
	if raw == "" {
		return input, "Publication date is required."
	}
	pubDate, ok := parsePubDate(raw)
	if !ok {
		return input, "Publication date is invalid."
	}
	input.PubDate = pubDate

	if input.Text == "" {
		return input, "Comment text is required."
	}
	return input, ""
}

// CreateComment attaches a comment to the post named in the path. The post
// existence is re-checked; a dangling id is a 404, not a server error.
func (a *API) CreateComment(c *gin.Context) {
	postID, err := parseUintParam(c, "post_id")
	if err != nil {
		a.NotFound(c)
		return
	}

	input, formError := a.commentFormInput(c)
	if formError != "" {
		a.renderPostDetail(c, postID, formError)
		return
	}

	if _, err := a.comments.Create(postID, currentUserID(c), input); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			a.NotFound(c)
		case errors.Is(err, service.ErrTextRequired), errors.Is(err, service.ErrPubDateRequired):
			a.renderPostDetail(c, postID, "Comment text and publication date are required.")
		default:
			a.ServerError(c, err)
		}
		return
	}

	c.Redirect(http.StatusFound, detailPath(postID))
}

// ownComment loads a comment for an owner-only page. Unlike posts, a
// failed ownership check here renders the 403 page.
func (a *API) ownComment(c *gin.Context) (*db.Comment, bool) {
	id, err := parseUintParam(c, "comment_id")
	if err != nil {
		a.NotFound(c)
		return nil, false
	}

	comment, err := a.comments.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			a.NotFound(c)
			return nil, false
		}
		a.ServerError(c, err)
		return nil, false
	}

	if !service.CanModify(currentUserID(c), comment.AuthorID) {
		a.Forbidden(c)
		return nil, false
	}
	return comment, true
}

// ShowCommentEdit renders the comment edit form.
func (a *API) ShowCommentEdit(c *gin.Context) {
	comment, ok := a.ownComment(c)
	if !ok {
		return
	}

	a.renderHTML(c, http.StatusOK, "comment_form.html", gin.H{
		"title":   "Edit comment",
		"comment": comment,
	})
}

// UpdateComment applies the comment edit form and returns to the post.
func (a *API) UpdateComment(c *gin.Context) {
	postID, err := parseUintParam(c, "post_id")
	if err != nil {
		a.NotFound(c)
		return
	}
	commentID, err := parseUintParam(c, "comment_id")
	if err != nil {
		a.NotFound(c)
		return
	}

	input, formError := a.commentFormInput(c)
	if formError != "" {
		a.renderHTML(c, http.StatusOK, "comment_form.html", gin.H{
			"title": "Edit comment",
			"error": formError,
		})
		return
	}

	if _, err := a.comments.Update(commentID, currentUserID(c), input); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			a.NotFound(c)
		case errors.Is(err, service.ErrNotOwner):
			a.Forbidden(c)
		default:
			a.ServerError(c, err)
		}
		return
	}

	c.Redirect(http.StatusFound, detailPath(postID))
}

// ShowCommentDelete renders the delete confirmation for a comment.
func (a *API) ShowCommentDelete(c *gin.Context) {
	comment, ok := a.ownComment(c)
	if !ok {
		return
	}

	a.renderHTML(c, http.StatusOK, "comment_form.html", gin.H{
		"title":   "Delete comment",
		"comment": comment,
		"delete":  true,
	})
}

// DeleteComment removes the comment and returns to the post.
func (a *API) DeleteComment(c *gin.Context) {
	postID, err := parseUintParam(c, "post_id")
	if err != nil {
		a.NotFound(c)
		return
	}
	commentID, err := parseUintParam(c, "comment_id")
	if err != nil {
		a.NotFound(c)
		return
	}

	if err := a.comments.Delete(commentID, currentUserID(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			a.NotFound(c)
		case errors.Is(err, service.ErrNotOwner):
			a.Forbidden(c)
		default:
			a.ServerError(c, err)
		}
		return
	}

	c.Redirect(http.StatusFound, detailPath(postID))
}
