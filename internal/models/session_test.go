package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidquest-server/internal/models"
)

func TestUserSessionHistory(t *testing.T) {
	session := models.NewUserSession(42)
	session.Quest = &models.Quest{
		Title:       "Квест",
		StartStepID: "start",
		Steps: []models.Step{
			{ID: "start", Text: "Начало", Options: []models.Option{{Text: "Дальше", NextStepID: "end"}}},
			{ID: "end", Text: "Конец"},
		},
	}

	t.Run("Пустая сессия не имеет активного шага", func(t *testing.T) {
		_, ok := session.CurrentStep()
		assert.False(t, ok)
	})

	t.Run("PushStep делает шаг активным", func(t *testing.T) {
		session.PushStep("start")
		step, ok := session.CurrentStep()
		require.True(t, ok)
		assert.Equal(t, "start", step.ID)
	})

	t.Run("Из начала квеста возвращаться некуда", func(t *testing.T) {
		_, ok := session.PopStep()
		assert.False(t, ok)
		assert.Equal(t, "start", session.CurrentStepID)
	})

	t.Run("PopStep возвращает на предыдущий шаг", func(t *testing.T) {
		session.PushStep("end")
		stepID, ok := session.PopStep()
		require.True(t, ok)
		assert.Equal(t, "start", stepID)
		assert.Equal(t, []string{"start"}, session.StepHistory)
	})
}

func TestUserSessionRoundtrip(t *testing.T) {
	// Сессия целиком живёт в Redis как JSON, включая весь граф квеста.
	original := models.NewUserSession(42)
	original.Requirements = "квест про лес"
	original.Language = "ru"
	original.QuestStarted = true
	original.Quest = &models.Quest{Title: "Квест", StartStepID: "start", Steps: []models.Step{{ID: "start", Text: "Начало"}}}
	original.PushStep("start")

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored models.UserSession
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, original.ChatID, restored.ChatID)
	assert.Equal(t, original.CurrentStepID, restored.CurrentStepID)
	assert.Equal(t, original.StepHistory, restored.StepHistory)
	require.NotNil(t, restored.Quest)
	assert.Equal(t, "Квест", restored.Quest.Title)
}

func TestQuestAppendStep(t *testing.T) {
	quest := &models.Quest{
		Title:       "Квест",
		StartStepID: "start",
		Steps:       []models.Step{{ID: "start", Text: "Начало"}},
	}

	quest.AppendStep(models.Step{ID: "cave", Text: "Пещера"})
	assert.True(t, quest.HasStep("cave"))

	step, ok := quest.StepByID("cave")
	require.True(t, ok)
	assert.Equal(t, "Пещера", step.Text)

	_, ok = quest.StepByID("nowhere")
	assert.False(t, ok)
}
