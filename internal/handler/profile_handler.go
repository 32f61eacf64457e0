package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/NikitaPolechshuk/django-sprint4/internal/service"
	"github.com/gin-gonic/gin"
)

// ShowEditProfile renders the acting user's profile form.
func (a *API) ShowEditProfile(c *gin.Context) {
	user := a.sessionUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, LoginPath)
		return
	}

	a.renderHTML(c, http.StatusOK, "user_form.html", gin.H{
		"title": "Edit profile",
		"form": service.ProfileInput{
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
	})
}

// UpdateProfile saves the acting user's own profile fields and returns to
// their profile page under the possibly changed username.
func (a *API) UpdateProfile(c *gin.Context) {
	input := service.ProfileInput{
		Username:  c.PostForm("username"),
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Email:     c.PostForm("email"),
	}

	user, err := a.profiles.UpdateProfile(currentUserID(c), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrUsernameRequired):
			message := "Username is required."
			if errors.Is(err, service.ErrUsernameTaken) {
				message = "This username is already taken."
			}
			a.renderHTML(c, http.StatusOK, "user_form.html", gin.H{
				"title": "Edit profile",
				"error": message,
				"form":  input,
			})
		case errors.Is(err, service.ErrUserNotFound):
			a.NotFound(c)
		default:
			a.ServerError(c, err)
		}
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", user.Username))
}
