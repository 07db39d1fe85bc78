package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tdngan/news-survey-server/config"
	"github.com/tdngan/news-survey-server/middleware"
	"github.com/tdngan/news-survey-server/models"
)

// Dashboard returns the superuser statistics overview: totals, recent
// activity and survey health.
func Dashboard(c *gin.Context) {
	var (
		totalUsers     int64
		vipUsers       int64
		totalArticles  int64
		totalSurveys   int64
		totalResponses int64
		activeSurveys  int64
	)
	config.DB.Model(&models.User{}).Count(&totalUsers)
	config.DB.Model(&models.Profile{}).Where("is_vip = ?", true).Count(&vipUsers)
	config.DB.Model(&models.Article{}).Count(&totalArticles)
	config.DB.Model(&models.Survey{}).Count(&totalSurveys)
	config.DB.Model(&models.Response{}).Count(&totalResponses)
	config.DB.Model(&models.Survey{}).Where("active = ?", true).Count(&activeSurveys)

	var recentArticles []models.Article
	config.DB.Order("published_at DESC").Limit(5).Find(&recentArticles)

	var recentSurveys []models.Survey
	config.DB.Order("created_at DESC").Limit(5).Find(&recentSurveys)

	var recentResponses []models.Response
	config.DB.Preload("User").Preload("Survey").
		Order("submitted_at DESC").Limit(10).
		Find(&recentResponses)

	recent := make([]gin.H, 0, len(recentResponses))
	for _, r := range recentResponses {
		recent = append(recent, gin.H{
			"id":           r.ID,
			"username":     r.User.Username,
			"survey_title": r.Survey.Title,
			"submitted_at": r.SubmittedAt,
			"score":        r.Score,
			"max_score":    r.MaxPossibleScore,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":      totalUsers,
		"vip_users":        vipUsers,
		"total_articles":   totalArticles,
		"total_surveys":    totalSurveys,
		"total_responses":  totalResponses,
		"active_surveys":   activeSurveys,
		"inactive_surveys": totalSurveys - activeSurveys,
		"recent_articles":  recentArticles,
		"recent_surveys":   recentSurveys,
		"recent_responses": recent,
	})
}

// ListUsers returns every account with profile and submission summary,
// ordered by username.
func ListUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Preload("Profile").
		Preload("Responses.Survey").
		Order("username ASC").
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load users"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		responses := make([]gin.H, 0, len(u.Responses))
		for _, r := range u.Responses {
			responses = append(responses, gin.H{
				"survey_id":    r.SurveyID,
				"survey_title": r.Survey.Title,
				"score":        r.Score,
				"max_score":    r.MaxPossibleScore,
				"submitted_at": r.SubmittedAt,
			})
		}
		out = append(out, gin.H{
			"id":           u.ID,
			"username":     u.Username,
			"email":        u.Email,
			"is_superuser": u.IsSuperuser,
			"is_vip":       u.Profile.IsVIP,
			"created_at":   u.CreatedAt,
			"responses":    responses,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": out})
}

type setVIPReq struct {
	IsVIP *bool `json:"is_vip" binding:"required"`
}

// SetUserVIP toggles another user's VIP flag. A missing target is a
// non-fatal management error, not a crash.
func SetUserVIP(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	var req setVIPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	if err := config.DB.Model(&models.Profile{}).
		Where("user_id = ?", user.ID).
		Update("is_vip", *req.IsVIP).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update VIP status"})
		return
	}

	msg := fmt.Sprintf("%s VIP status removed", user.Username)
	if *req.IsVIP {
		msg = fmt.Sprintf("%s is now VIP", user.Username)
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// DeleteUser removes an account with its profile and responses.
// Self-deletion is refused.
func DeleteUser(c *gin.Context) {
	actor := c.MustGet(middleware.CtxUser).(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}
	if uint(id) == actor.ID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "You cannot delete yourself"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM response_answer_choices WHERE response_answer_id IN (
				SELECT id FROM response_answers WHERE response_id IN (
					SELECT id FROM responses WHERE user_id = ?))`, user.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM response_answers WHERE response_id IN (
				SELECT id FROM responses WHERE user_id = ?)`, user.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Response{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User %s deleted", user.Username)})
}

// SurveyResults returns aggregate statistics for every survey and its
// responses.
func SurveyResults(c *gin.Context) {
	var surveys []models.Survey
	if err := config.DB.Order("created_at DESC").Find(&surveys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load surveys"})
		return
	}

	var totalResponses int64
	config.DB.Model(&models.Response{}).Count(&totalResponses)
	var vipUsers int64
	config.DB.Model(&models.Profile{}).Where("is_vip = ?", true).Count(&vipUsers)

	out := make([]gin.H, 0, len(surveys))
	for _, s := range surveys {
		var responses []models.Response
		config.DB.Preload("User").
			Where("survey_id = ?", s.ID).
			Order("submitted_at DESC").
			Find(&responses)

		rows := make([]gin.H, 0, len(responses))
		scoreSum := 0
		for _, r := range responses {
			scoreSum += r.Score
			rows = append(rows, gin.H{
				"username":     r.User.Username,
				"submitted_at": r.SubmittedAt,
				"score":        r.Score,
				"max_score":    r.MaxPossibleScore,
				"slot_number":  r.SlotNumber,
			})
		}
		avg := 0.0
		if len(responses) > 0 {
			avg = float64(scoreSum) / float64(len(responses))
		}

		out = append(out, gin.H{
			"id":             s.ID,
			"title":          s.Title,
			"active":         s.Active,
			"max_slots":      s.MaxSlots,
			"response_count": len(responses),
			"average_score":  avg,
			"responses":      rows,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"surveys":         out,
		"total_responses": totalResponses,
		"total_vip_users": vipUsers,
	})
}
