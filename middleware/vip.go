package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireVIP blocks survey routes for non-VIP users. Must run after AuthJWT,
// so an anonymous request is already rejected with 401 before this gate; an
// authenticated user without the VIP flag is refused outright with 403.
func RequireVIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		if !user.Profile.IsVIP {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "VIP access required"})
			return
		}
		c.Next()
	}
}
