package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/tdngan/news-survey-server/models"
)

// Score computes the earned and maximum-possible points over the submitted
// answers of one response. Every answer's Question (with Choices) and
// SelectedChoices must be loaded. A question with no answer row contributes
// to neither total; the maximum only counts questions that were answered.
//
// text questions award points when the submitted text, trimmed and
// case-folded, equals the stored correct answer (blank equals blank). All
// other kinds award points only when the selected choice set exactly matches
// the choices flagged correct: same size, same members, no partial credit.
func Score(answers []models.ResponseAnswer) (earned, possible int) {
	for _, ans := range answers {
		q := ans.Question
		possible += q.Points

		if q.Type == models.QuestionText {
			if textMatches(ans.AnswerText, q.CorrectAnswer) {
				earned += q.Points
			}
			continue
		}
		if choicesMatch(ans.SelectedChoices, q.Choices) {
			earned += q.Points
		}
	}
	return earned, possible
}

func textMatches(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}

func choicesMatch(selected []models.QuestionChoice, all []models.QuestionChoice) bool {
	correct := make(map[uint]bool)
	for _, c := range all {
		if c.IsCorrect {
			correct[c.ID] = true
		}
	}
	if len(selected) != len(correct) {
		return false
	}
	seen := make(map[uint]bool, len(selected))
	for _, c := range selected {
		if !correct[c.ID] || seen[c.ID] {
			return false
		}
		seen[c.ID] = true
	}
	return true
}

// RecalculateScore loads the answers of a response, scores them and persists
// both totals on the response row. Idempotent for an unchanged answer set.
func RecalculateScore(tx *gorm.DB, responseID uint) (earned, possible int, err error) {
	var answers []models.ResponseAnswer
	if err := tx.
		Preload("Question").
		Preload("Question.Choices").
		Preload("SelectedChoices").
		Where("response_id = ?", responseID).
		Find(&answers).Error; err != nil {
		return 0, 0, err
	}

	earned, possible = Score(answers)

	if err := tx.Model(&models.Response{}).
		Where("id = ?", responseID).
		Updates(map[string]interface{}{
			"score":              earned,
			"max_possible_score": possible,
		}).Error; err != nil {
		return 0, 0, err
	}
	return earned, possible, nil
}
