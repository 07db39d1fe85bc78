package models

import "time"

// Response is one user's complete submission to one survey. The composite
// unique index enforces at most one row per (survey, user); re-submission
// replaces the answer set instead of creating a duplicate.
type Response struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SurveyID         uint      `gorm:"not null;uniqueIndex:idx_responses_survey_user" json:"survey_id"`
	UserID           uint      `gorm:"not null;uniqueIndex:idx_responses_survey_user" json:"user_id"`
	SubmittedAt      time.Time `gorm:"autoCreateTime" json:"submitted_at"`
	Score            int       `gorm:"not null;default:0" json:"score"`
	MaxPossibleScore int       `gorm:"not null;default:0" json:"max_possible_score"`
	// SlotNumber records which capacity slot the response used. It is not
	// validated against MaxSlots.
	SlotNumber int `gorm:"not null" json:"slot_number"`

	Survey  Survey           `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"-"`
	User    User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Answers []ResponseAnswer `gorm:"foreignKey:ResponseID" json:"answers,omitempty"`
}

// ResponseAnswer holds one question's answer within a response: free text for
// text questions, selected choices for the choice kinds.
type ResponseAnswer struct {
	ID         uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	ResponseID uint     `gorm:"not null;index" json:"response_id"`
	Response   Response `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"-"`
	QuestionID uint     `gorm:"not null;index" json:"question_id"`
	Question   Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	AnswerText string   `gorm:"type:text" json:"answer_text"`

	SelectedChoices []QuestionChoice `gorm:"many2many:response_answer_choices" json:"selected_choices,omitempty"`
}
