package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kidquest-server/internal/utils"
)

func TestDetectLanguage(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected string
	}{
		{"Русский текст", "Хочу квест про рыцарей и драконов", utils.LanguageRU},
		{"Английский текст", "I want a quest about space pirates", utils.LanguageEN},
		{"Пустая строка", "", utils.LanguageRU},
		{"Только цифры и знаки", "12345 !!!", utils.LanguageRU},
		{"Смешанный текст с преобладанием кириллицы", "Квест про minecraft и приключения", utils.LanguageRU},
		{"Эмодзи не ломают определение", "A quest about dragons 🐉🔥", utils.LanguageEN},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, utils.DetectLanguage(tc.text))
		})
	}
}
