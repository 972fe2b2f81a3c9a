package models

import "errors"

var (
	// ErrAIGenerationFailed - ошибка вызова AI (транспорт, квота, пустой ответ).
	ErrAIGenerationFailed = errors.New("ошибка генерации текста AI")

	// ErrEmptyResponse - AI вернул пустой ответ.
	ErrEmptyResponse = errors.New("empty response from AI")
	// ErrExtractionFailed - в ответе AI не найден парсируемый JSON.
	ErrExtractionFailed = errors.New("no parseable JSON found in response")
	// ErrSchemaViolation - JSON распарсен, но структура не соответствует контракту.
	ErrSchemaViolation = errors.New("response JSON violates schema")
	// ErrInvalidQuestGraph - квест структурно некорректен (висячая ссылка,
	// цикл, недостижимый шаг, нет концовок).
	ErrInvalidQuestGraph = errors.New("invalid quest graph")

	// ErrGenerationExhausted - все попытки генерации исчерпаны.
	ErrGenerationExhausted = errors.New("generation attempts exhausted")

	// ErrNoMatch - ввод пользователя не совпал ни с одним вариантом выбора.
	// Это не сбой: сигнал для создания новой ветки.
	ErrNoMatch = errors.New("no matching option")

	// ErrSessionNotFound - сессия пользователя не найдена в хранилище.
	ErrSessionNotFound = errors.New("session not found")
)
