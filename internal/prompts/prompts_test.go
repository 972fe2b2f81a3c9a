package prompts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kidquest-server/internal/prompts"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, prompts.LanguageRU, prompts.Normalize("ru"))
	assert.Equal(t, prompts.LanguageEN, prompts.Normalize("en"))
	assert.Equal(t, prompts.LanguageRU, prompts.Normalize(""))
	assert.Equal(t, prompts.LanguageRU, prompts.Normalize("de"))
}

func TestQuestGenerationPrompt(t *testing.T) {
	t.Run("Требования подставляются в шаблон", func(t *testing.T) {
		prompt := prompts.QuestGenerationPrompt("квест про пиратов", prompts.LanguageRU)
		assert.Contains(t, prompt, "квест про пиратов")
		assert.Contains(t, prompt, "startStepId")
		assert.Contains(t, prompt, "nextStepId")
	})

	t.Run("Английский шаблон для en", func(t *testing.T) {
		prompt := prompts.QuestGenerationPrompt("a pirate quest", prompts.LanguageEN)
		assert.Contains(t, prompt, "a pirate quest")
		assert.NotContains(t, prompt, "Создай")
	})
}

func TestChoiceMatchingPrompt(t *testing.T) {
	options := "1. Исследовать лес\n2. Вернуться домой\n"
	prompt := prompts.ChoiceMatchingPrompt("пойду в чащу", options, prompts.LanguageRU)
	assert.Contains(t, prompt, "пойду в чащу")
	assert.Contains(t, prompt, "Исследовать лес")
	// Контракт с AI: при несовпадении модель обязана ответить None.
	assert.Contains(t, prompt, "None")
}

func TestNewBranchPrompt(t *testing.T) {
	prompt := prompts.NewBranchPrompt("поискать пещеру", "Ты стоишь на опушке.", prompts.LanguageRU)
	assert.Contains(t, prompt, "поискать пещеру")
	assert.Contains(t, prompt, "Ты стоишь на опушке.")
	assert.Contains(t, prompt, "nextStepId")
}
