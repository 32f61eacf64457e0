package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/NikitaPolechshuk/django-sprint4/internal/db"
	"github.com/NikitaPolechshuk/django-sprint4/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderMarkdown converts a post body to sanitized HTML.
func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// Index renders the public post index.
func (a *API) Index(c *gin.Context) {
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)

	result, err := a.posts.List(time.Now(), page)
	if err != nil {
		a.ServerError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "index.html", gin.H{
		"title":  "Blogicum",
		"posts":  result.Posts,
		"paging": result,
	})
}

// CategoryPosts renders visible posts of a published category.
func (a *API) CategoryPosts(c *gin.Context) {
	slug := c.Param("category_slug")
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)

	category, result, err := a.posts.ListByCategory(slug, time.Now(), page)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			a.NotFound(c)
			return
		}
		a.ServerError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "category.html", gin.H{
		"title":    category.Title,
		"category": category,
		"posts":    result.Posts,
		"paging":   result,
	})
}

// Profile renders an author's page with their visible posts.
func (a *API) Profile(c *gin.Context) {
	username := c.Param("username")
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)

	profile, result, err := a.posts.ListByAuthor(username, time.Now(), page)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			a.NotFound(c)
			return
		}
		a.ServerError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "profile.html", gin.H{
		"title":   profile.Username,
		"profile": profile,
		"posts":   result.Posts,
		"paging":  result,
	})
}

// PostDetail renders a single post with its comments and the comment form.
// The author sees their own post regardless of visibility; everyone else
// gets a 404 unless the public predicate holds.
func (a *API) PostDetail(c *gin.Context) {
	id, err := parseUintParam(c, "post_id")
	if err != nil {
		a.NotFound(c)
		return
	}

	a.renderPostDetail(c, id, "")
}

// renderPostDetail is shared with the comment-create failure path, which
// re-renders the page with an inline form error.
func (a *API) renderPostDetail(c *gin.Context, id uint, commentError string) {
	post, err := a.posts.Get(id, currentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.NotFound(c)
			return
		}
		a.ServerError(c, err)
		return
	}

	comments, err := a.comments.ListForPost(post.ID)
	if err != nil {
		a.ServerError(c, err)
		return
	}

	status := http.StatusOK
	data := gin.H{
		"title":    post.Title,
		"post":     post,
		"body":     renderMarkdown(post.Text),
		"comments": comments,
	}
	if commentError != "" {
		data["commentError"] = commentError
		data["commentText"] = c.PostForm("text")
	}

	a.renderHTML(c, status, "detail.html", data)
}

// postOwner reports whether the acting user owns the post.
func postOwner(c *gin.Context, post *db.Post) bool {
	return service.CanModify(currentUserID(c), post.AuthorID)
}
