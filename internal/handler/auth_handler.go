package handler

import (
	"errors"
	"net/http"

	"github.com/NikitaPolechshuk/django-sprint4/internal/db"
	"github.com/NikitaPolechshuk/django-sprint4/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// LoginPath is where anonymous users are sent when authentication is
// required.
const LoginPath = "/auth/login/"

// AuthRequired redirects anonymous requests to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUserID returns the acting user's id, zero when anonymous.
func currentUserID(c *gin.Context) uint {
	session := sessions.Default(c)
	if id, ok := session.Get("user_id").(uint); ok {
		return id
	}
	return 0
}

// sessionUser loads the full account behind the session, nil when
// anonymous or stale.
func (a *API) sessionUser(c *gin.Context) *db.User {
	id := currentUserID(c)
	if id == 0 {
		return nil
	}
	user, err := a.profiles.Get(id)
	if err != nil {
		return nil
	}
	return user
}

// ShowLogin renders the login form.
func (a *API) ShowLogin(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{"title": "Log in"})
}

// Login verifies the credentials and starts a session.
func (a *API) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := a.profiles.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			a.renderHTML(c, http.StatusUnauthorized, "login.html", gin.H{
				"title": "Log in",
				"error": "Invalid username or password.",
			})
			return
		}
		a.ServerError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("username", user.Username)
	if err := session.Save(); err != nil {
		a.ServerError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout clears the session.
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		a.ServerError(c, err)
		return
	}
	a.renderHTML(c, http.StatusOK, "logged_out.html", gin.H{"title": "Logged out"})
}

// ShowRegistration renders the registration form.
func (a *API) ShowRegistration(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "registration_form.html", gin.H{"title": "Registration"})
}

// Register creates a new account from the submitted form.
func (a *API) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	_, err := a.profiles.Register(username, password, service.ProfileInput{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Email:     c.PostForm("email"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken),
			errors.Is(err, service.ErrUsernameRequired),
			errors.Is(err, service.ErrPasswordRequired):
			a.renderHTML(c, http.StatusOK, "registration_form.html", gin.H{
				"title":    "Registration",
				"error":    registrationError(err),
				"username": username,
			})
		default:
			a.ServerError(c, err)
		}
		return
	}

	c.Redirect(http.StatusFound, "/auth/registration/success/")
}

// RegistrationSuccess renders the post-registration page.
func (a *API) RegistrationSuccess(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "registration_success.html", gin.H{"title": "Registration complete"})
}

func registrationError(err error) string {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		return "This username is already taken."
	case errors.Is(err, service.ErrUsernameRequired):
		return "Username is required."
	case errors.Is(err, service.ErrPasswordRequired):
		return "Password is required."
	}
	return "Registration failed."
}
