package service_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidquest-server/internal/models"
	"kidquest-server/internal/service"
)

func TestExtractJSON(t *testing.T) {
	t.Run("Чистый JSON возвращается как есть", func(t *testing.T) {
		raw := `{"title": "Лесной квест", "steps": []}`
		data, err := service.ExtractJSON(raw)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(data))
	})

	t.Run("JSON, обёрнутый в прозу и code fence", func(t *testing.T) {
		raw := "Вот ваш квест:\n```json\n{\"title\": \"Квест\"}\n```\nПриятной игры!"
		data, err := service.ExtractJSON(raw)
		require.NoError(t, err)
		assert.JSONEq(t, `{"title": "Квест"}`, string(data))
	})

	t.Run("Оборванный ответ чинится дописыванием скобок", func(t *testing.T) {
		raw := `{"quest": {"title": "Квест", "steps": [{"id": "start"}`
		data, err := service.ExtractJSON(raw)
		require.NoError(t, err)
		assert.True(t, json.Valid(data))
	})

	t.Run("Пустой ответ", func(t *testing.T) {
		_, err := service.ExtractJSON("   \n\t ")
		assert.ErrorIs(t, err, models.ErrEmptyResponse)
	})

	t.Run("Ответ без фигурных скобок", func(t *testing.T) {
		_, err := service.ExtractJSON("Извините, я не могу сгенерировать квест.")
		assert.ErrorIs(t, err, models.ErrExtractionFailed)
	})

	t.Run("Безнадёжно сломанный JSON", func(t *testing.T) {
		_, err := service.ExtractJSON(`{"title": Лесной квест}`)
		assert.ErrorIs(t, err, models.ErrExtractionFailed)
	})
}

func TestFixJSON(t *testing.T) {
	t.Run("Корректный JSON не меняется", func(t *testing.T) {
		input := `{"a": [1, 2], "b": {"c": 3}}`
		assert.Equal(t, input, service.FixJSON(input))
	})

	t.Run("Идемпотентность", func(t *testing.T) {
		input := `{"steps": [{"id": "start"`
		fixed := service.FixJSON(input)
		assert.Equal(t, fixed, service.FixJSON(fixed))
		assert.True(t, json.Valid([]byte(fixed)))
	})

	t.Run("Скобки внутри строк не считаются", func(t *testing.T) {
		input := `{"text": "скобка { в тексте"`
		fixed := service.FixJSON(input)
		assert.Equal(t, input+"}", fixed)
		assert.True(t, json.Valid([]byte(fixed)))
	})

	t.Run("Пустая строка", func(t *testing.T) {
		assert.Equal(t, "", service.FixJSON(""))
	})
}

func TestExtractChoiceLabel(t *testing.T) {
	t.Run("Метка нормализуется", func(t *testing.T) {
		label, ok := service.ExtractChoiceLabel("  Исследовать Лес  \n")
		require.True(t, ok)
		assert.Equal(t, "исследовать лес", label)
	})

	t.Run("Сентинель None", func(t *testing.T) {
		_, ok := service.ExtractChoiceLabel("None")
		assert.False(t, ok)
	})

	t.Run("Русский сентинель", func(t *testing.T) {
		_, ok := service.ExtractChoiceLabel("Ничего не подходит.")
		assert.False(t, ok)
	})

	t.Run("Пустой вердикт", func(t *testing.T) {
		_, ok := service.ExtractChoiceLabel("   ")
		assert.False(t, ok)
	})
}
