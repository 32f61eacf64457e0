package router

import (
	"html/template"

	"github.com/NikitaPolechshuk/django-sprint4/internal/config"
	"github.com/NikitaPolechshuk/django-sprint4/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Setup configures the gin engine and the full route table.
func Setup(api *handler.API, cfg config.AppConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(api.ServerError))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("blogicum_session", store))

	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	})
	r.LoadHTMLGlob(cfg.TemplateGlob)

	r.Static("/static", "./web/static")
	r.NoRoute(api.NotFound)

	// Public read surface.
	r.GET("/", api.Index)
	r.GET("/posts/:post_id/", api.PostDetail)
	r.GET("/category/:category_slug/", api.CategoryPosts)
	r.GET("/profile/:username/", api.Profile)

	// Static pages.
	pages := r.Group("/pages")
	{
		pages.GET("/about/", api.About)
		pages.GET("/rules/", api.Rules)
	}

	// Session management and registration.
	auth := r.Group("/auth")
	{
		auth.GET("/login/", api.ShowLogin)
		auth.POST("/login/", api.Login)
		auth.GET("/logout/", api.Logout)
		auth.GET("/registration/", api.ShowRegistration)
		auth.POST("/registration/", api.Register)
		auth.GET("/registration/success/", api.RegistrationSuccess)
	}

	// Anonymous users hitting a create route are redirected to login.
	authed := r.Group("")
	authed.Use(handler.AuthRequired())
	{
		authed.GET("/edit_profile/", api.ShowEditProfile)
		authed.POST("/edit_profile/", api.UpdateProfile)

		authed.GET("/post/create/", api.ShowPostCreate)
		authed.POST("/post/create/", api.CreatePost)

		authed.POST("/posts/:post_id/comment/", api.CreateComment)
		authed.GET("/posts/:post_id/edit_comment/:comment_id/", api.ShowCommentEdit)
		authed.POST("/posts/:post_id/edit_comment/:comment_id/", api.UpdateComment)
		authed.GET("/posts/:post_id/delete_comment/:comment_id/", api.ShowCommentDelete)
		authed.POST("/posts/:post_id/delete_comment/:comment_id/", api.DeleteComment)

		authed.POST("/upload/image", api.UploadImage)
	}

	// Post edit/delete carry their own failure policy: non-owners,
	// anonymous included, are bounced to the detail page.
	r.GET("/posts/:post_id/edit/", api.ShowPostEdit)
	r.POST("/posts/:post_id/edit/", api.UpdatePost)
	r.GET("/posts/:post_id/delete/", api.ShowPostDelete)
	r.POST("/posts/:post_id/delete/", api.DeletePost)

	return r
}
