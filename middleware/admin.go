package middleware

import (
	"net/http"

	"lumenfolio/portfolio-api/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

// IsAdminRequest reports whether the request carries a valid admin
// session cookie. Missing cookie or mismatched token both read as
// unauthenticated.
func IsAdminRequest(c *gin.Context) bool {
	token, err := c.Cookie(security.CookieName)
	if err != nil {
		return false
	}

	return security.ValidToken(token, viper.GetString("admin.password"), viper.GetString("admin.secret"))
}

// NewAdminGate short-circuits every mutating route when the session
// cookie is absent or wrong.
func NewAdminGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdminRequest(c) {
			requestID := c.GetString("requestID")

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok":        false,
				"error":     "Unauthorized",
				"requestID": requestID,
			})
			return
		}

		c.Next()
	}
}
