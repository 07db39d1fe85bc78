package models

import "time"

// Question answer kinds.
const (
	QuestionText           = "text"
	QuestionMultipleChoice = "multiple_choice"
	QuestionRadio          = "radio"
	QuestionCheckbox       = "checkbox"
)

// ValidQuestionType reports whether t is one of the declared answer kinds.
func ValidQuestionType(t string) bool {
	switch t {
	case QuestionText, QuestionMultipleChoice, QuestionRadio, QuestionCheckbox:
		return true
	}
	return false
}

type Question struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SurveyID uint   `gorm:"not null;index" json:"survey_id"`
	Survey   Survey `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"-"`
	Text     string `gorm:"size:500;not null" json:"text"`
	Type     string `gorm:"column:question_type;size:20;not null;default:'text'" json:"question_type"`
	// Order defines the display and iteration order within the survey.
	// Column named display_order because "order" is a reserved word.
	// Required and Points carry no column default: GORM drops zero values
	// from the INSERT when a default tag is present, which would silently
	// turn an optional question required and a zero-point one into a
	// one-pointer. Fallbacks live in the create handler instead.
	Order         int       `gorm:"column:display_order;not null;default:0" json:"order"`
	Required      bool      `gorm:"not null" json:"required"`
	Points        int       `gorm:"not null" json:"points"`
	CorrectAnswer string    `gorm:"type:text" json:"correct_answer,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Choices []QuestionChoice `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
}

type QuestionChoice struct {
	ID         uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint     `gorm:"not null;index" json:"question_id"`
	Question   Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	Text       string   `gorm:"size:200;not null" json:"text"`
	Order      int      `gorm:"column:display_order;not null;default:0" json:"order"`
	IsCorrect  bool     `gorm:"not null;default:false" json:"is_correct"`
}
