// Package schemas определяет структурные контракты на ответы AI:
// полный квест и одиночный новый шаг. Любое нарушение контракта приводит
// к отказу до того, как данные попадут в граф-валидацию.
package schemas

import (
	"encoding/json"
	"fmt"

	"kidquest-server/internal/models"
)

// ParseQuest разбирает JSON вида {"quest": {...}} и проверяет его
// соответствие контракту полного квеста.
func ParseQuest(data []byte) (*models.Quest, error) {
	var aux struct {
		Quest *struct {
			Title       *string `json:"title"`
			StartStepID *string `json:"startStepId"`
			Steps       *[]struct {
				ID      *string     `json:"id"`
				Image   *string     `json:"image"`
				Text    *string     `json:"text"`
				Options []rawOption `json:"options"`
			} `json:"steps"`
		} `json:"quest"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, fmt.Errorf("%w: failed to parse quest: %v", models.ErrSchemaViolation, err)
	}
	if aux.Quest == nil {
		return nil, fmt.Errorf("%w: missing required field 'quest'", models.ErrSchemaViolation)
	}
	if aux.Quest.Title == nil {
		return nil, fmt.Errorf("%w: missing required field 'quest.title'", models.ErrSchemaViolation)
	}
	if aux.Quest.StartStepID == nil {
		return nil, fmt.Errorf("%w: missing required field 'quest.startStepId'", models.ErrSchemaViolation)
	}
	if aux.Quest.Steps == nil {
		return nil, fmt.Errorf("%w: missing required field 'quest.steps'", models.ErrSchemaViolation)
	}

	quest := &models.Quest{
		Title:       *aux.Quest.Title,
		StartStepID: *aux.Quest.StartStepID,
		Steps:       make([]models.Step, 0, len(*aux.Quest.Steps)),
	}
	for i, rs := range *aux.Quest.Steps {
		if rs.ID == nil || rs.Image == nil || rs.Text == nil {
			return nil, fmt.Errorf("%w: step %d is missing one of required fields 'id', 'image', 'text'", models.ErrSchemaViolation, i)
		}
		// У шагов полного квеста options может отсутствовать (концовка).
		options, err := convertOptions(rs.Options, fmt.Sprintf("step %d", i))
		if err != nil {
			return nil, err
		}
		quest.Steps = append(quest.Steps, models.Step{
			ID:      *rs.ID,
			Image:   *rs.Image,
			Text:    *rs.Text,
			Options: options,
		})
	}
	return quest, nil
}

// ParseStep разбирает JSON одиночного нового шага. В отличие от шагов
// полного квеста, поле options здесь обязательно, даже если оно пустое.
func ParseStep(data []byte) (*models.Step, error) {
	var aux struct {
		ID      *string      `json:"id"`
		Image   *string      `json:"image"`
		Text    *string      `json:"text"`
		Options *[]rawOption `json:"options"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, fmt.Errorf("%w: failed to parse step: %v", models.ErrSchemaViolation, err)
	}
	if aux.ID == nil {
		return nil, fmt.Errorf("%w: missing required field 'id'", models.ErrSchemaViolation)
	}
	if aux.Image == nil {
		return nil, fmt.Errorf("%w: missing required field 'image'", models.ErrSchemaViolation)
	}
	if aux.Text == nil {
		return nil, fmt.Errorf("%w: missing required field 'text'", models.ErrSchemaViolation)
	}
	if aux.Options == nil {
		return nil, fmt.Errorf("%w: missing required field 'options'", models.ErrSchemaViolation)
	}
	options, err := convertOptions(*aux.Options, "step")
	if err != nil {
		return nil, err
	}
	return &models.Step{
		ID:      *aux.ID,
		Image:   *aux.Image,
		Text:    *aux.Text,
		Options: options,
	}, nil
}

type rawOption struct {
	Text       *string `json:"text"`
	NextStepID *string `json:"nextStepId"`
	Emoji      string  `json:"emoji"`
}

func convertOptions(raw []rawOption, where string) ([]models.Option, error) {
	options := make([]models.Option, 0, len(raw))
	for i, ro := range raw {
		if ro.Text == nil {
			return nil, fmt.Errorf("%w: %s option %d is missing required field 'text'", models.ErrSchemaViolation, where, i)
		}
		if ro.NextStepID == nil {
			return nil, fmt.Errorf("%w: %s option %d is missing required field 'nextStepId'", models.ErrSchemaViolation, where, i)
		}
		options = append(options, models.Option{
			Text:       *ro.Text,
			NextStepID: *ro.NextStepID,
			Emoji:      ro.Emoji,
		})
	}
	return options, nil
}
