package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidquest-server/internal/models"
	"kidquest-server/internal/service"
	"kidquest-server/internal/service/mocks"
)

const validQuestJSON = `{
	"quest": {
		"title": "Лесное приключение",
		"startStepId": "start",
		"steps": [
			{
				"id": "start",
				"image": "🌲",
				"text": "Ты стоишь на опушке волшебного леса.",
				"options": [
					{"text": "Исследовать лес", "nextStepId": "forest", "emoji": "🌲"},
					{"text": "Вернуться домой", "nextStepId": "home", "emoji": "🏠"}
				]
			},
			{"id": "forest", "image": "🦊", "text": "В лесу тебя встречает лиса.", "options": []},
			{"id": "home", "image": "🏠", "text": "Дом, милый дом.", "options": []}
		]
	}
}`

func newEngine(t *testing.T) (*service.QuestEngine, *mocks.MockAIClient) {
	mockAI := mocks.NewMockAIClient(t)
	engine := service.NewQuestEngine(mockAI, zap.NewNop(), 3, 0)
	return engine, mockAI
}

func TestGenerateQuest(t *testing.T) {
	ctx := context.Background()

	t.Run("Успешная генерация с первой попытки", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		// Ответ AI обёрнут в прозу: движок должен извлечь JSON сам.
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return("Вот квест:\n"+validQuestJSON+"\nУдачи!", service.UsageInfo{}, nil).Once()

		quest, err := engine.GenerateQuest(ctx, "42", "квест про лес", "ru")
		require.NoError(t, err)
		assert.Equal(t, "Лесное приключение", quest.Title)
		assert.Equal(t, "start", quest.StartStepID)
		assert.Len(t, quest.Steps, 3)
		mockAI.AssertExpectations(t)
	})

	t.Run("Успех со второй попытки после мусорного ответа", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return("Извините, не получилось.", service.UsageInfo{}, nil).Once()
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return(validQuestJSON, service.UsageInfo{}, nil).Once()

		quest, err := engine.GenerateQuest(ctx, "42", "квест про лес", "ru")
		require.NoError(t, err)
		assert.Len(t, quest.Steps, 3)
		mockAI.AssertExpectations(t)
	})

	t.Run("Исчерпание попыток на нарушении схемы", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		// Синтаксически корректный JSON без обязательного поля quest.
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return(`{"title": "Квест без обёртки"}`, service.UsageInfo{}, nil).Times(3)

		quest, err := engine.GenerateQuest(ctx, "42", "квест про лес", "ru")
		assert.Nil(t, quest)
		assert.ErrorIs(t, err, models.ErrGenerationExhausted)
		mockAI.AssertExpectations(t)
	})

	t.Run("Исчерпание попыток на невалидном графе", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		// Схема корректна, но nextStepId указывает в никуда.
		broken := `{"quest": {"title": "К", "startStepId": "start", "steps": [
			{"id": "start", "image": "x", "text": "t", "options": [{"text": "o", "nextStepId": "nowhere"}]}
		]}}`
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return(broken, service.UsageInfo{}, nil).Times(3)

		_, err := engine.GenerateQuest(ctx, "42", "квест", "ru")
		assert.ErrorIs(t, err, models.ErrGenerationExhausted)
		mockAI.AssertExpectations(t)
	})
}

func TestResolveChoice(t *testing.T) {
	ctx := context.Background()
	currentStep := &models.Step{
		ID:    "start",
		Image: "🌲",
		Text:  "Опушка леса.",
		Options: []models.Option{
			{Text: "Исследовать лес", NextStepID: "forest", Emoji: "🌲"},
			{Text: "Вернуться домой", NextStepID: "home", Emoji: "🏠"},
		},
	}

	t.Run("Точное совпадение без обращения к AI", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		nextStepID, err := engine.ResolveChoice(ctx, "42", currentStep, "исследовать ЛЕС", "ru")
		require.NoError(t, err)
		assert.Equal(t, "forest", nextStepID)
		mockAI.AssertNotCalled(t, "GenerateText")
	})

	t.Run("Совпадение по подстроке без обращения к AI", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		nextStepID, err := engine.ResolveChoice(ctx, "42", currentStep, "домой", "ru")
		require.NoError(t, err)
		assert.Equal(t, "home", nextStepID)
		mockAI.AssertNotCalled(t, "GenerateText")
	})

	t.Run("AI-сопоставление при свободной формулировке", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return("Исследовать лес", service.UsageInfo{}, nil).Once()

		nextStepID, err := engine.ResolveChoice(ctx, "42", currentStep, "пойду гулять в чащу", "ru")
		require.NoError(t, err)
		assert.Equal(t, "forest", nextStepID)
		mockAI.AssertExpectations(t)
	})

	t.Run("AI отвечает сентинелем None", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return("None", service.UsageInfo{}, nil).Once()

		_, err := engine.ResolveChoice(ctx, "42", currentStep, "полететь на луну", "ru")
		assert.ErrorIs(t, err, models.ErrNoMatch)
		mockAI.AssertExpectations(t)
	})

	t.Run("Вердикт AI не совпадает ни с одним вариантом", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		// Вердикт перепроверяется по реальным вариантам и отбрасывается.
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return("Полететь на луну", service.UsageInfo{}, nil).Once()

		_, err := engine.ResolveChoice(ctx, "42", currentStep, "прыгнуть в портал", "ru")
		assert.ErrorIs(t, err, models.ErrNoMatch)
		mockAI.AssertExpectations(t)
	})

	t.Run("Ошибка AI трактуется как несовпадение", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return("", service.UsageInfo{}, assert.AnError).Once()

		_, err := engine.ResolveChoice(ctx, "42", currentStep, "что-то странное", "ru")
		assert.ErrorIs(t, err, models.ErrNoMatch)
	})

	t.Run("Шаг-концовка", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		terminal := &models.Step{ID: "end", Image: "🏁", Text: "Конец."}
		_, err := engine.ResolveChoice(ctx, "42", terminal, "дальше", "ru")
		assert.ErrorIs(t, err, models.ErrNoMatch)
		mockAI.AssertNotCalled(t, "GenerateText")
	})
}

func TestCreateBranch(t *testing.T) {
	ctx := context.Background()
	quest := &models.Quest{
		Title:       "Квест",
		StartStepID: "start",
		Steps: []models.Step{
			{ID: "start", Image: "🌲", Text: "Опушка.", Options: []models.Option{
				{Text: "Исследовать лес", NextStepID: "forest"},
			}},
			{ID: "forest", Image: "🦊", Text: "Лес."},
		},
	}
	currentStep := &quest.Steps[0]

	t.Run("Новый шаг с уникальным идентификатором", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return(`{"id": "cave", "image": "🕳", "text": "Ты находишь пещеру.", "options": []}`, service.UsageInfo{}, nil).Once()

		step, err := engine.CreateBranch(ctx, "42", quest, currentStep, "поискать пещеру", "ru")
		require.NoError(t, err)
		assert.Equal(t, "cave", step.ID)
		assert.Empty(t, step.Options)
		// Добавление шага в квест — дело вызывающего кода.
		assert.Len(t, quest.Steps, 2)
		mockAI.AssertExpectations(t)
	})

	t.Run("Коллизия идентификатора разрешается заменой", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return(`{"id": "start", "image": "🕳", "text": "Пещера.", "options": []}`, service.UsageInfo{}, nil).Once()

		step, err := engine.CreateBranch(ctx, "42", quest, currentStep, "поискать пещеру", "ru")
		require.NoError(t, err)
		assert.NotEqual(t, "start", step.ID)
		assert.Contains(t, step.ID, "step_")
	})

	t.Run("Отсутствие options в новом шаге - нарушение схемы", func(t *testing.T) {
		engine, mockAI := newEngine(t)
		mockAI.On("GenerateText", mock.Anything, "42", mock.Anything, mock.Anything).
			Return(`{"id": "cave", "image": "🕳", "text": "Пещера."}`, service.UsageInfo{}, nil).Times(3)

		_, err := engine.CreateBranch(ctx, "42", quest, currentStep, "поискать пещеру", "ru")
		assert.ErrorIs(t, err, models.ErrGenerationExhausted)
		mockAI.AssertExpectations(t)
	})
}

func TestIsQuestFinished(t *testing.T) {
	engine, _ := newEngine(t)
	assert.True(t, engine.IsQuestFinished(nil))
	assert.True(t, engine.IsQuestFinished(&models.Step{ID: "end"}))
	assert.False(t, engine.IsQuestFinished(&models.Step{
		ID:      "start",
		Options: []models.Option{{Text: "Дальше", NextStepID: "end"}},
	}))
}
