package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NikitaPolechshuk/django-sprint4/internal/db"
	"github.com/NikitaPolechshuk/django-sprint4/internal/service"
	"github.com/gin-gonic/gin"
)

// pubDateLayouts accepts the datetime-local input format plus a couple of
// hand-typed fallbacks.
var pubDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parsePubDate(raw string) (time.Time, bool) {
	for _, layout := range pubDateLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func detailPath(postID uint) string {
	return fmt.Sprintf("/posts/%d/", postID)
}

func (a *API) profilePath(c *gin.Context) string {
	if user := a.sessionUser(c); user != nil {
		return fmt.Sprintf("/profile/%s/", user.Username)
	}
	return "/"
}

// postFormInput pulls the post form fields out of the request. The author
// is always the session user; any client-supplied author field is ignored.
func (a *API) postFormInput(c *gin.Context) (service.PostInput, string) {
	input := service.PostInput{
		Title:       c.PostForm("title"),
		Text:        c.PostForm("text"),
		IsPublished: c.PostForm("is_published") != "",
		CategoryID:  parseOptionalUint(c.PostForm("category")),
		LocationID:  parseOptionalUint(c.PostForm("location")),
		AuthorID:    currentUserID(c),
	}

	if input.Title == "" {
		return input, "Title is required."
	}
	if input.Text == "" {
		return input, "Text is required."
	}

	pubDate, ok := parsePubDate(c.PostForm("pub_date"))
	if !ok {
		return input, "Publication date is required."
	}
	input.PubDate = pubDate

	if file, err := c.FormFile("image"); err == nil {
		imageURL, err := a.savePostImage(c, file)
		if err != nil {
			return input, "Uploaded file is not a valid image."
		}
		input.ImageURL = imageURL
	}

	return input, ""
}

// renderPostForm renders the shared create/edit form.
func (a *API) renderPostForm(c *gin.Context, status int, data gin.H) {
	categories, err := a.categories.ListPublished()
	if err != nil {
		a.ServerError(c, err)
		return
	}
	locations, err := a.locations.ListPublished()
	if err != nil {
		a.ServerError(c, err)
		return
	}

	data["categories"] = categories
	data["locations"] = locations
	a.renderHTML(c, status, "post_form.html", data)
}

// ShowPostCreate renders the empty post form.
func (a *API) ShowPostCreate(c *gin.Context) {
	a.renderPostForm(c, http.StatusOK, gin.H{"title": "New post"})
}

// CreatePost stores a new post and sends the author to their profile.
func (a *API) CreatePost(c *gin.Context) {
	input, formError := a.postFormInput(c)
	if formError != "" {
		a.renderPostForm(c, http.StatusOK, gin.H{
			"title": "New post",
			"error": formError,
			"form":  input,
		})
		return
	}

	if _, err := a.posts.Create(input); err != nil {
		a.ServerError(c, err)
		return
	}

	c.Redirect(http.StatusFound, a.profilePath(c))
}

// editablePost loads the post for an owner-only page. Non-owners are
// bounced to the detail view instead of an error page.
func (a *API) editablePost(c *gin.Context) (*db.Post, bool) {
	id, err := parseUintParam(c, "post_id")
	if err != nil {
		a.NotFound(c)
		return nil, false
	}

	post, err := a.posts.Get(id, currentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.NotFound(c)
			return nil, false
		}
		a.ServerError(c, err)
		return nil, false
	}

	if !postOwner(c, post) {
		c.Redirect(http.StatusFound, detailPath(post.ID))
		return nil, false
	}
	return post, true
}

// ShowPostEdit renders the edit form for the post's author.
func (a *API) ShowPostEdit(c *gin.Context) {
	post, ok := a.editablePost(c)
	if !ok {
		return
	}

	a.renderPostForm(c, http.StatusOK, gin.H{
		"title": "Edit post",
		"post":  post,
		"form": service.PostInput{
			Title:       post.Title,
			Text:        post.Text,
			PubDate:     post.PubDate,
			IsPublished: post.IsPublished,
			CategoryID:  post.CategoryID,
			LocationID:  post.LocationID,
		},
	})
}

// UpdatePost applies the edit form. Ownership failures redirect to the
// detail view rather than an error page. The ownership check runs before
// the form is parsed so a rejected edit never stores an uploaded image.
func (a *API) UpdatePost(c *gin.Context) {
	post, ok := a.editablePost(c)
	if !ok {
		return
	}

	input, formError := a.postFormInput(c)
	if formError != "" {
		a.renderPostForm(c, http.StatusOK, gin.H{
			"title": "Edit post",
			"error": formError,
			"form":  input,
		})
		return
	}

	if _, err := a.posts.Update(post.ID, currentUserID(c), input); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			a.NotFound(c)
		case errors.Is(err, service.ErrNotOwner):
			c.Redirect(http.StatusFound, detailPath(post.ID))
		default:
			a.ServerError(c, err)
		}
		return
	}

	c.Redirect(http.StatusFound, detailPath(post.ID))
}

// ShowPostDelete renders the delete confirmation page for the author.
func (a *API) ShowPostDelete(c *gin.Context) {
	post, ok := a.editablePost(c)
	if !ok {
		return
	}

	a.renderHTML(c, http.StatusOK, "post_delete.html", gin.H{
		"title": "Delete post",
		"post":  post,
	})
}

// DeletePost removes the post and sends the author to their profile.
// Comments survive as orphans.
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "post_id")
	if err != nil {
		a.NotFound(c)
		return
	}

	profilePath := a.profilePath(c)
	if err := a.posts.Delete(id, currentUserID(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			a.NotFound(c)
		case errors.Is(err, service.ErrNotOwner):
			c.Redirect(http.StatusFound, detailPath(id))
		default:
			a.ServerError(c, err)
		}
		return
	}

	c.Redirect(http.StatusFound, profilePath)
}
