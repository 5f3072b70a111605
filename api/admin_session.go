package api

import (
	"net/http"

	"lumenfolio/portfolio-api/middleware"

	"github.com/gin-gonic/gin"
)

func (a *API) AdminSession(c *gin.Context) {
	if !middleware.IsAdminRequest(c) {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
