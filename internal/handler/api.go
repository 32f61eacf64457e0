package handler

import (
	"net/http"

	"github.com/NikitaPolechshuk/django-sprint4/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	posts      *service.PostService
	comments   *service.CommentService
	categories *service.CategoryService
	locations  *service.LocationService
	profiles   *service.ProfileService
	uploadDir  string
	uploadURL  string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, uploadDir, uploadURL string) *API {
	return &API{
		db:         gdb,
		posts:      service.NewPostService(gdb),
		comments:   service.NewCommentService(gdb),
		categories: service.NewCategoryService(gdb),
		locations:  service.NewLocationService(gdb),
		profiles:   service.NewProfileService(gdb),
		uploadDir:  uploadDir,
		uploadURL:  uploadURL,
	}
}

// renderHTML attaches the session user to every template payload so the
// navigation bar can reflect the login state.
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["user"]; !exists {
		if user := a.sessionUser(c); user != nil {
			payload["user"] = user
		}
	}

	c.HTML(status, template, payload)
}

// NotFound renders the shared 404 page. Wired as the router's NoRoute
// handler and reused for invisible or missing entities.
func (a *API) NotFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "404.html", gin.H{"title": "Page not found"})
}

// Forbidden renders the shared 403 page.
func (a *API) Forbidden(c *gin.Context) {
	a.renderHTML(c, http.StatusForbidden, "403.html", gin.H{"title": "Forbidden"})
}

// ServerError renders the shared 500 page. Wired as the recovery handler.
func (a *API) ServerError(c *gin.Context, _ any) {
	a.renderHTML(c, http.StatusInternalServerError, "500.html", gin.H{"title": "Server error"})
}
