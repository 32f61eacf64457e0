package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// About renders the static about page.
func (a *API) About(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "about.html", gin.H{"title": "About"})
}

// Rules renders the static rules page.
func (a *API) Rules(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "rules.html", gin.H{"title": "Rules"})
}
