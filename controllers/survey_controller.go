package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tdngan/news-survey-server/config"
	"github.com/tdngan/news-survey-server/models"
	"github.com/tdngan/news-survey-server/services"
)

// ListSurveys returns all surveys with their advisory slot availability.
func ListSurveys(c *gin.Context) {
	var surveys []models.Survey
	if err := config.DB.Order("created_at DESC").Find(&surveys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load surveys"})
		return
	}

	out := make([]gin.H, 0, len(surveys))
	for i := range surveys {
		out = append(out, surveyJSON(&surveys[i]))
	}
	c.JSON(http.StatusOK, gin.H{"surveys": out})
}

type createSurveyReq struct {
	Title             string `json:"title" binding:"required,max=200"`
	Description       string `json:"description"`
	MaxSlots          *int   `json:"max_slots"`
	SlotDurationHours *int   `json:"slot_duration_hours"`
}

// CreateSurvey creates an empty survey; questions are added separately.
func CreateSurvey(c *gin.Context) {
	var req createSurveyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	survey := models.Survey{
		Title:             req.Title,
		Description:       req.Description,
		Active:            true,
		MaxSlots:          10,
		SlotDurationHours: 24,
	}
	if req.MaxSlots != nil && *req.MaxSlots >= 0 {
		survey.MaxSlots = *req.MaxSlots
	}
	if req.SlotDurationHours != nil && *req.SlotDurationHours > 0 {
		survey.SlotDurationHours = *req.SlotDurationHours
	}

	if err := config.DB.Create(&survey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create survey"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Survey created successfully! Now add questions.",
		"survey":  surveyJSON(&survey),
	})
}

// GetSurvey returns one survey with its questions, choices and the input
// field specs a renderer needs to build the response form.
func GetSurvey(c *gin.Context) {
	survey, ok := loadSurvey(c)
	if !ok {
		return
	}

	body := surveyJSON(survey)
	body["questions"] = survey.Questions
	body["fields"] = services.BuildFieldSpecs(survey)
	c.JSON(http.StatusOK, body)
}

// DeleteSurvey removes a survey and everything it owns — questions, choices,
// responses, answers and their selections — inside one transaction so the
// cascade stays visible and testable.
func DeleteSurvey(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid survey ID"})
		return
	}

	var survey models.Survey
	if err := config.DB.First(&survey, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Survey not found"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM response_answer_choices WHERE response_answer_id IN (
				SELECT id FROM response_answers WHERE response_id IN (
					SELECT id FROM responses WHERE survey_id = ?))`, survey.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM response_answers WHERE response_id IN (
				SELECT id FROM responses WHERE survey_id = ?)`, survey.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("survey_id = ?", survey.ID).Delete(&models.Response{}).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM question_choices WHERE question_id IN (
				SELECT id FROM questions WHERE survey_id = ?)`, survey.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("survey_id = ?", survey.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&survey).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete survey"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Survey deleted successfully"})
}

type addQuestionReq struct {
	Text          string `json:"text" binding:"required,max=500"`
	Type          string `json:"question_type" binding:"required"`
	Points        *int   `json:"points"`
	Required      *bool  `json:"required"`
	CorrectAnswer string `json:"correct_answer"`
}

// AddQuestion appends a question to a survey; the order index continues the
// existing sequence.
func AddQuestion(c *gin.Context) {
	survey, ok := loadSurvey(c)
	if !ok {
		return
	}

	var req addQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	if !models.ValidQuestionType(req.Type) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Unknown question type"})
		return
	}

	var count int64
	config.DB.Model(&models.Question{}).Where("survey_id = ?", survey.ID).Count(&count)

	question := models.Question{
		SurveyID:      survey.ID,
		Text:          req.Text,
		Type:          req.Type,
		Order:         int(count) + 1,
		Required:      true,
		Points:        1,
		CorrectAnswer: req.CorrectAnswer,
	}
	if req.Points != nil && *req.Points >= 0 {
		question.Points = *req.Points
	}
	if req.Required != nil {
		question.Required = *req.Required
	}

	if err := config.DB.Create(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not add question"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Question added successfully",
		"question": question,
	})
}

// DeleteQuestion removes a question with its choices and submitted answers.
func DeleteQuestion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid question ID"})
		return
	}

	var question models.Question
	if err := config.DB.First(&question, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM response_answer_choices WHERE response_answer_id IN (
				SELECT id FROM response_answers WHERE question_id = ?)`, question.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.ResponseAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.QuestionChoice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

type addChoiceReq struct {
	Text      string `json:"text" binding:"required,max=200"`
	IsCorrect bool   `json:"is_correct"`
}

// AddChoice appends a choice to a question.
func AddChoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid question ID"})
		return
	}

	var question models.Question
	if err := config.DB.First(&question, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}

	var req addChoiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var count int64
	config.DB.Model(&models.QuestionChoice{}).Where("question_id = ?", question.ID).Count(&count)

	choice := models.QuestionChoice{
		QuestionID: question.ID,
		Text:       req.Text,
		Order:      int(count) + 1,
		IsCorrect:  req.IsCorrect,
	}
	if err := config.DB.Create(&choice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not add choice"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Choice added successfully",
		"choice":  choice,
	})
}

// DeleteChoice removes a single choice and any selections referencing it.
func DeleteChoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid choice ID"})
		return
	}

	var choice models.QuestionChoice
	if err := config.DB.First(&choice, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Choice not found"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM response_answer_choices WHERE question_choice_id = ?`, choice.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&choice).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete choice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Choice deleted successfully"})
}

// loadSurvey reads :id, loads the survey with ordered questions and choices
// and writes the error response itself when something is off.
func loadSurvey(c *gin.Context) (*models.Survey, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid survey ID"})
		return nil, false
	}

	var survey models.Survey
	err = config.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, id ASC")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, id ASC")
		}).
		First(&survey, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Survey not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load survey"})
		return nil, false
	}
	return &survey, true
}

// surveyJSON renders the common survey fields plus the advisory capacity
// figures derived from the recorded response count.
func surveyJSON(s *models.Survey) gin.H {
	var used int64
	config.DB.Model(&models.Response{}).Where("survey_id = ?", s.ID).Count(&used)

	return gin.H{
		"id":                  s.ID,
		"title":               s.Title,
		"description":         s.Description,
		"created_at":          s.CreatedAt,
		"active":              s.Active,
		"max_slots":           s.MaxSlots,
		"slot_duration_hours": s.SlotDurationHours,
		"response_count":      used,
		"available_slots":     s.AvailableSlots(used),
		"has_available_slot":  s.HasAvailableSlot(used),
	}
}
