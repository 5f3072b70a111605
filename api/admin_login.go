package api

import (
	"net/http"

	"lumenfolio/portfolio-api/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

const rememberMaxAge = 7 * 24 * 60 * 60

type loginBody struct {
	Password string `json:"password" form:"password"`
	Remember bool   `json:"remember" form:"remember"`
}

// AdminLogin compares the supplied password against the configured one
// and on match sets the session cookie. With remember the cookie lives
// seven days, without it the browser session bounds it.
func (a *API) AdminLogin(c *gin.Context) {
	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if data.Password == "" {
		fail(c, http.StatusBadRequest, "Password field can't be empty")
		return
	}

	if !security.ValidPassword(data.Password, viper.GetString("admin.password")) {
		fail(c, http.StatusUnauthorized, "Invalid password")
		return
	}

	maxAge := 0
	if data.Remember {
		maxAge = rememberMaxAge
	}

	token := security.AdminToken(viper.GetString("admin.password"), viper.GetString("admin.secret"))
	c.SetCookie(security.CookieName, token, maxAge, "/", "", viper.GetBool("host.ssl.enabled"), true)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
