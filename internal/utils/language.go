package utils

import "unicode"

// Коды языков, которые понимает движок промтов.
const (
	LanguageRU = "ru"
	LanguageEN = "en"
)

// DetectLanguage определяет язык текста по доле кириллицы и латиницы.
// Если больше половины символов кириллические — русский, если латинские —
// английский. По умолчанию русский: основная аудитория бота русскоязычная.
func DetectLanguage(text string) string {
	if text == "" {
		return LanguageRU
	}

	var cyrillic, latin, total int
	for _, r := range text {
		total++
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			latin++
		}
	}

	if total > 0 && float64(cyrillic)/float64(total) > 0.5 {
		return LanguageRU
	}
	if total > 0 && float64(latin)/float64(total) > 0.5 {
		return LanguageEN
	}
	return LanguageRU
}
