package service

import (
	"encoding/json"
	"strings"

	"kidquest-server/internal/models"
)

// ExtractJSON извлекает JSON-объект из сырого ответа AI.
// Сначала пробуем распарсить ответ целиком; если не вышло, берём окно от
// первой '{' до последней '}' (ответ часто обёрнут в прозу или code fence).
// Перед повторным парсом окно прогоняется через FixJSON на случай
// оборванного ответа модели.
func ExtractJSON(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, models.ErrEmptyResponse
	}

	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return nil, models.ErrExtractionFailed
	}

	candidate := FixJSON(trimmed[start : end+1])
	if !json.Valid([]byte(candidate)) {
		return nil, models.ErrExtractionFailed
	}
	return json.RawMessage(candidate), nil
}

// FixJSON дописывает недостающие закрывающие скобки в конце строки.
// Скобки внутри строковых литералов не учитываются.
func FixJSON(jsonStr string) string {
	if jsonStr == "" {
		return jsonStr
	}

	var curlyOpen, curlyClose, squareOpen, squareClose int
	inString := false
	escaped := false

	for _, char := range jsonStr {
		if char == '"' && !escaped {
			inString = !inString
		}
		if !inString {
			switch char {
			case '{':
				curlyOpen++
			case '}':
				curlyClose++
			case '[':
				squareOpen++
			case ']':
				squareClose++
			}
		}
		escaped = char == '\\' && !escaped
	}

	fixed := jsonStr
	if n := squareOpen - squareClose; n > 0 {
		fixed += strings.Repeat("]", n)
	}
	if n := curlyOpen - curlyClose; n > 0 {
		fixed += strings.Repeat("}", n)
	}
	return fixed
}

// Сентинели "ничего не подходит" в ответе AI на промт сопоставления.
var noMatchSentinels = []string{"none", "не подходит", "ничего не подходит"}

// ExtractChoiceLabel нормализует текстовый вердикт AI при сопоставлении
// выбора. Возвращает метку выбранного варианта в нижнем регистре и false,
// если AI ответил сентинелем "ничего не подходит" (на любом из языков)
// либо ответ пуст.
func ExtractChoiceLabel(raw string) (string, bool) {
	result := strings.ToLower(strings.TrimSpace(raw))
	if result == "" {
		return "", false
	}
	for _, sentinel := range noMatchSentinels {
		if strings.Contains(result, sentinel) {
			return "", false
		}
	}
	return result, true
}
