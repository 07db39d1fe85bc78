package services

import (
	"fmt"
	"sort"

	"github.com/tdngan/news-survey-server/models"
)

// Field kinds a renderer has to support.
const (
	FieldText     = "text"
	FieldRadio    = "radio"
	FieldCheckbox = "checkbox"
)

type FieldOption struct {
	Value uint   `json:"value"`
	Label string `json:"label"`
}

// FieldSpec describes one input of a survey's response form. Name is stable
// and unique per question so submitted data maps back unambiguously.
type FieldSpec struct {
	QuestionID uint          `json:"question_id"`
	Name       string        `json:"name"`
	Kind       string        `json:"kind"`
	Label      string        `json:"label"`
	Required   bool          `json:"required"`
	Options    []FieldOption `json:"options,omitempty"`
}

// BuildFieldSpecs produces one input spec per question, ordered by the
// question order index. text questions take free text; radio questions a
// single choice; checkbox and multiple_choice questions a multi-selection
// over the question's choice set.
func BuildFieldSpecs(survey *models.Survey) []FieldSpec {
	questions := make([]models.Question, len(survey.Questions))
	copy(questions, survey.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].Order != questions[j].Order {
			return questions[i].Order < questions[j].Order
		}
		return questions[i].ID < questions[j].ID
	})

	specs := make([]FieldSpec, 0, len(questions))
	for _, q := range questions {
		spec := FieldSpec{
			QuestionID: q.ID,
			Name:       fmt.Sprintf("question_%d", q.ID),
			Label:      q.Text,
			Required:   q.Required,
		}
		switch q.Type {
		case models.QuestionText:
			spec.Kind = FieldText
		case models.QuestionRadio:
			spec.Kind = FieldRadio
			spec.Options = choiceOptions(q.Choices)
		case models.QuestionCheckbox, models.QuestionMultipleChoice:
			// multiple_choice renders as a multi-selection; it already scored
			// through the same choice-set comparison as checkbox.
			spec.Kind = FieldCheckbox
			spec.Options = choiceOptions(q.Choices)
		default:
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

func choiceOptions(choices []models.QuestionChoice) []FieldOption {
	sorted := make([]models.QuestionChoice, len(choices))
	copy(sorted, choices)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})

	opts := make([]FieldOption, 0, len(sorted))
	for _, c := range sorted {
		opts = append(opts, FieldOption{Value: c.ID, Label: c.Text})
	}
	return opts
}
