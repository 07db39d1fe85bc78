package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tdngan/news-survey-server/config"
	"github.com/tdngan/news-survey-server/middleware"
	"github.com/tdngan/news-survey-server/models"
)

// GetProfile returns the requesting user's profile.
func GetProfile(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

type updateProfileReq struct {
	IsVIP *bool `json:"is_vip" binding:"required"`
}

// UpdateProfile lets users update their own profile, including the VIP flag.
// Self-service VIP mirrors the behavior of the profile form this API
// replaces; see DESIGN.md before tightening it to superuser-only.
func UpdateProfile(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	if err := config.DB.Model(&models.Profile{}).
		Where("user_id = ?", user.ID).
		Update("is_vip", *req.IsVIP).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update profile"})
		return
	}

	user.Profile.IsVIP = *req.IsVIP
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    publicUser(user),
	})
}
