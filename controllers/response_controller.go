package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tdngan/news-survey-server/config"
	"github.com/tdngan/news-survey-server/middleware"
	"github.com/tdngan/news-survey-server/models"
	"github.com/tdngan/news-survey-server/services"
)

type answerReq struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	AnswerText string `json:"answer_text"`
	ChoiceIDs  []uint `json:"choice_ids"`
}

type submitResponseReq struct {
	Answers []answerReq `json:"answers" binding:"required"`
}

// SubmitResponse records a VIP user's answers to a survey. A user holds at
// most one response per survey: re-submission replaces the previous answer
// set. The delete-and-reinsert plus score recalculation run inside a single
// transaction keyed on the (survey, user) uniqueness constraint.
func SubmitResponse(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	survey, ok := loadSurvey(c)
	if !ok {
		return
	}

	var req submitResponseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	questions := make(map[uint]*models.Question, len(survey.Questions))
	for i := range survey.Questions {
		questions[survey.Questions[i].ID] = &survey.Questions[i]
	}

	answered := make(map[uint]*answerReq, len(req.Answers))
	for i := range req.Answers {
		ans := &req.Answers[i]
		q, ok := questions[ans.QuestionID]
		if !ok {
			c.JSON(http.StatusBadRequest,
				gin.H{"message": fmt.Sprintf("Question %d does not belong to this survey", ans.QuestionID)})
			return
		}
		// one answer per question per response
		if _, dup := answered[ans.QuestionID]; dup {
			c.JSON(http.StatusBadRequest,
				gin.H{"message": fmt.Sprintf("Question %d answered more than once", ans.QuestionID)})
			return
		}
		choiceIDs := make(map[uint]bool, len(q.Choices))
		for _, ch := range q.Choices {
			choiceIDs[ch.ID] = true
		}
		for _, cid := range ans.ChoiceIDs {
			if !choiceIDs[cid] {
				c.JSON(http.StatusBadRequest,
					gin.H{"message": fmt.Sprintf("Choice %d does not belong to question %d", cid, ans.QuestionID)})
				return
			}
		}
		answered[ans.QuestionID] = ans
	}

	// field-level validation: required questions need a non-blank value
	for _, q := range survey.Questions {
		if !q.Required {
			continue
		}
		ans, ok := answered[q.ID]
		if !ok {
			c.JSON(http.StatusBadRequest,
				gin.H{"message": fmt.Sprintf("Question %d is required", q.ID)})
			return
		}
		if q.Type == models.QuestionText {
			if strings.TrimSpace(ans.AnswerText) == "" {
				c.JSON(http.StatusBadRequest,
					gin.H{"message": fmt.Sprintf("Question %d is required", q.ID)})
				return
			}
		} else if len(ans.ChoiceIDs) == 0 {
			c.JSON(http.StatusBadRequest,
				gin.H{"message": fmt.Sprintf("Question %d is required", q.ID)})
			return
		}
	}

	var response models.Response
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("survey_id = ? AND user_id = ?", survey.ID, user.ID).
			First(&response).Error
		switch {
		case err == nil:
			// replacement submission keeps its slot number
			if err := tx.Model(&response).
				Update("submitted_at", time.Now()).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			var used int64
			if err := tx.Model(&models.Response{}).
				Where("survey_id = ?", survey.ID).
				Count(&used).Error; err != nil {
				return err
			}
			response = models.Response{
				SurveyID:   survey.ID,
				UserID:     user.ID,
				SlotNumber: int(used) + 1,
			}
			if err := tx.Create(&response).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// drop the previous answer set before reinserting
		if err := tx.Exec(`DELETE FROM response_answer_choices WHERE response_answer_id IN (
				SELECT id FROM response_answers WHERE response_id = ?)`, response.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("response_id = ?", response.ID).
			Delete(&models.ResponseAnswer{}).Error; err != nil {
			return err
		}

		for _, ans := range req.Answers {
			row := models.ResponseAnswer{
				ResponseID: response.ID,
				QuestionID: ans.QuestionID,
				AnswerText: ans.AnswerText,
			}
			if err := tx.Omit("SelectedChoices").Create(&row).Error; err != nil {
				return err
			}
			for _, cid := range ans.ChoiceIDs {
				if err := tx.Exec(
					`INSERT INTO response_answer_choices (response_answer_id, question_choice_id) VALUES (?, ?)`,
					row.ID, cid).Error; err != nil {
					return err
				}
			}
		}

		earned, possible, err := services.RecalculateScore(tx, response.ID)
		if err != nil {
			return err
		}
		response.Score = earned
		response.MaxPossibleScore = possible
		return nil
	})
	if err != nil {
		config.Logger.Error("could not store survey response",
			zap.Uint("survey_id", survey.ID), zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not store response"})
		return
	}

	surveySubmissionsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{
		"message":            "Survey submitted successfully",
		"survey_id":          survey.ID,
		"score":              response.Score,
		"max_possible_score": response.MaxPossibleScore,
		"slot_number":        response.SlotNumber,
	})
}

// GetSubmitted is the post-submission confirmation: the requesting user's
// response and score for one survey, or null when nothing was submitted yet.
func GetSubmitted(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	survey, ok := loadSurvey(c)
	if !ok {
		return
	}

	var response models.Response
	err := config.DB.Where("survey_id = ? AND user_id = ?", survey.ID, user.ID).
		First(&response).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{
			"survey":   surveyJSON(survey),
			"response": nil,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"survey": surveyJSON(survey),
		"response": gin.H{
			"id":                 response.ID,
			"submitted_at":       response.SubmittedAt,
			"score":              response.Score,
			"max_possible_score": response.MaxPossibleScore,
			"slot_number":        response.SlotNumber,
		},
	})
}
