package api

import (
	"net/http"

	"lumenfolio/portfolio-api/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

func (a *API) AdminLogout(c *gin.Context) {
	c.SetCookie(security.CookieName, "", -1, "/", "", viper.GetBool("host.ssl.enabled"), true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
