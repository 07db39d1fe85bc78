package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tdngan/news-survey-server/config"
	"github.com/tdngan/news-survey-server/models"
	"github.com/tdngan/news-survey-server/utils"
)

// CtxUser is the context key holding the authenticated models.User.
const CtxUser = "user"

// AuthJWT validates Authorization: Bearer <token>, loads the user with their
// profile and injects both into the context. Anonymous requests get 401 —
// the API equivalent of the redirect-to-login an HTML app would issue.
func AuthJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, status, msg := userFromHeader(c)
		if status != 0 {
			c.AbortWithStatusJSON(status, gin.H{"message": msg})
			return
		}
		c.Set(CtxUser, *user)
		c.Next()
	}
}

// OptionalAuth injects the user when a valid token is present and lets the
// request through either way. Used where guests see a different slice of
// data rather than an error.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, status, _ := userFromHeader(c); status == 0 {
			c.Set(CtxUser, *user)
		}
		c.Next()
	}
}

// RequireSuperuser blocks routes reserved for administrators. Must run after
// AuthJWT.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		if !user.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Superuser access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user injected by AuthJWT or
// OptionalAuth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

func userFromHeader(c *gin.Context) (*models.User, int, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return nil, http.StatusUnauthorized, "Missing or invalid Authorization header"
	}
	rawToken := strings.TrimSpace(authHeader[7:])

	claims, err := utils.VerifyToken(rawToken)
	if err != nil {
		return nil, http.StatusUnauthorized, "Invalid token"
	}

	uid, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return nil, http.StatusUnauthorized, "Invalid subject"
	}

	var user models.User
	if err := config.DB.Preload("Profile").First(&user, uid).Error; err != nil {
		return nil, http.StatusUnauthorized, "User not found"
	}
	return &user, 0, ""
}
