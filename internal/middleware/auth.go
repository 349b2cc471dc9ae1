package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lionfish/api/internal/service"
)

const CurrentUserKey = "current_user"

// Auth resolves the session token from the Authorization header or, failing
// that, the Authorization cookie set at login. A resolved user is stored on
// the context; anything else aborts with 401.
func Auth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := c.GetHeader("Authorization")
		if credential == "" {
			if cookie, err := c.Cookie("Authorization"); err == nil {
				credential = cookie
			}
		}

		if !strings.HasPrefix(credential, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		token := strings.TrimPrefix(credential, "Bearer ")

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}
