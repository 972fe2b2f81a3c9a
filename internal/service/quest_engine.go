package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kidquest-server/internal/models"
	"kidquest-server/internal/prompts"
	"kidquest-server/internal/schemas"
)

// Параметры генерации по операциям. Температура повышена для нарративного
// разнообразия; сопоставление выбора идёт с дефолтными параметрами API.
const (
	questGenMaxTokens   = 8192
	questGenTemperature = 0.9
	branchMaxTokens     = 1024
	branchTemperature   = 0.8
	matchMaxTokens      = 100
)

// QuestEngine генерирует и расширяет квесты, превращая ненадёжный вывод
// AI в структурно гарантированный DAG. Движок не хранит состояние
// пользователей: квест, текущий шаг и история передаются явно.
type QuestEngine struct {
	ai          AIClient
	logger      *zap.Logger
	maxAttempts int
	retryDelay  time.Duration
}

// NewQuestEngine создает движок квестов.
// maxAttempts <= 0 трактуется как 1 попытка.
func NewQuestEngine(ai AIClient, logger *zap.Logger, maxAttempts int, retryDelay time.Duration) *QuestEngine {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &QuestEngine{
		ai:          ai,
		logger:      logger.Named("QuestEngine"),
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// GenerateQuest генерирует квест по требованиям пользователя.
// Каждая попытка: промт -> AI -> извлечение JSON -> схема -> граф-валидация.
// Квест возвращается только после прохождения всех проверок; после
// исчерпания бюджета попыток возвращается ErrGenerationExhausted.
func (e *QuestEngine) GenerateQuest(ctx context.Context, userID, requirements, language string) (*models.Quest, error) {
	prompt := prompts.QuestGenerationPrompt(requirements, language)
	params := GenerationParams{
		Temperature: floatPtr(questGenTemperature),
		MaxTokens:   intPtr(questGenMaxTokens),
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		quest, err := e.generateQuestOnce(ctx, userID, prompt, params)
		if err == nil {
			e.logger.Info("Квест успешно сгенерирован",
				zap.String("userID", userID),
				zap.String("title", quest.Title),
				zap.Int("steps", len(quest.Steps)),
				zap.Int("attempt", attempt),
			)
			return quest, nil
		}
		lastErr = err
		e.logger.Warn("Попытка генерации квеста не удалась",
			zap.String("userID", userID),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", e.maxAttempts),
			zap.Error(err),
		)
		if attempt < e.maxAttempts {
			if err := e.waitRetry(ctx); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("%w: %d attempts, last error: %v", models.ErrGenerationExhausted, e.maxAttempts, lastErr)
}

func (e *QuestEngine) generateQuestOnce(ctx context.Context, userID, prompt string, params GenerationParams) (*models.Quest, error) {
	raw, _, err := e.ai.GenerateText(ctx, userID, prompt, params)
	if err != nil {
		return nil, err
	}
	data, err := ExtractJSON(raw)
	if err != nil {
		e.logger.Debug("Не удалось извлечь JSON из ответа AI", zap.String("raw", raw))
		return nil, err
	}
	quest, err := schemas.ParseQuest(data)
	if err != nil {
		return nil, err
	}
	if err := ValidateQuestGraph(quest); err != nil {
		return nil, err
	}
	return quest, nil
}

// ResolveChoice сопоставляет свободный ввод пользователя с вариантами
// текущего шага. Политика в строгом порядке приоритета:
//  1. точное совпадение без учёта регистра;
//  2. текст пользователя является подстрокой метки варианта;
//  3. сопоставление через AI — только если 1-2 не дали результата.
// Ответ AI никогда не используется как идентификатор шага напрямую:
// его вердикт заново сопоставляется с реальными вариантами.
// При полном несовпадении возвращается ErrNoMatch.
func (e *QuestEngine) ResolveChoice(ctx context.Context, userID string, step *models.Step, userChoice, language string) (string, error) {
	if step == nil || len(step.Options) == 0 {
		return "", models.ErrNoMatch
	}

	if nextStepID, ok := matchOption(step, userChoice); ok {
		return nextStepID, nil
	}

	// Дешёвые стратегии не сработали — спрашиваем AI.
	prompt := prompts.ChoiceMatchingPrompt(userChoice, enumerateOptions(step), language)
	raw, _, err := e.ai.GenerateText(ctx, userID, prompt, GenerationParams{MaxTokens: intPtr(matchMaxTokens)})
	if err != nil {
		e.logger.Warn("AI-сопоставление выбора не удалось", zap.String("userID", userID), zap.Error(err))
		return "", models.ErrNoMatch
	}

	label, ok := ExtractChoiceLabel(raw)
	if !ok {
		return "", models.ErrNoMatch
	}
	if nextStepID, ok := matchOption(step, label); ok {
		return nextStepID, nil
	}
	return "", models.ErrNoMatch
}

// CreateBranch создает новый шаг, продолжающий историю от текущего шага
// в направлении, заданном свободным вводом пользователя. Цикл попыток
// такой же, как у генерации квеста, но с контрактом одиночного шага.
// Добавление шага в квест — ответственность вызывающего кода.
func (e *QuestEngine) CreateBranch(ctx context.Context, userID string, quest *models.Quest, currentStep *models.Step, userChoice, language string) (*models.Step, error) {
	prompt := prompts.NewBranchPrompt(userChoice, currentStep.Text, language)
	params := GenerationParams{
		Temperature: floatPtr(branchTemperature),
		MaxTokens:   intPtr(branchMaxTokens),
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		step, err := e.createBranchOnce(ctx, userID, prompt, params)
		if err == nil {
			ensureUniqueStepID(quest, step)
			e.logger.Info("Новая ветка создана",
				zap.String("userID", userID),
				zap.String("stepID", step.ID),
				zap.Int("attempt", attempt),
			)
			return step, nil
		}
		lastErr = err
		e.logger.Warn("Попытка создания ветки не удалась",
			zap.String("userID", userID),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", e.maxAttempts),
			zap.Error(err),
		)
		if attempt < e.maxAttempts {
			if err := e.waitRetry(ctx); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("%w: %d attempts, last error: %v", models.ErrGenerationExhausted, e.maxAttempts, lastErr)
}

func (e *QuestEngine) createBranchOnce(ctx context.Context, userID, prompt string, params GenerationParams) (*models.Step, error) {
	raw, _, err := e.ai.GenerateText(ctx, userID, prompt, params)
	if err != nil {
		return nil, err
	}
	data, err := ExtractJSON(raw)
	if err != nil {
		e.logger.Debug("Не удалось извлечь JSON нового шага", zap.String("raw", raw))
		return nil, err
	}
	return schemas.ParseStep(data)
}

// IsQuestFinished сообщает, завершён ли квест на данном шаге.
// Признак концовки чисто структурный: нет исходящих вариантов выбора.
func (e *QuestEngine) IsQuestFinished(step *models.Step) bool {
	return step == nil || step.IsTerminal()
}

// waitRetry выдерживает фиксированную паузу между попытками,
// не игнорируя отмену контекста.
func (e *QuestEngine) waitRetry(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(e.retryDelay):
		return nil
	}
}

// matchOption применяет единую политику локального сопоставления:
// точное совпадение без учёта регистра, затем вхождение текста
// пользователя в метку варианта как подстроки.
func matchOption(step *models.Step, userText string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(userText))
	if needle == "" {
		return "", false
	}
	for _, option := range step.Options {
		if strings.EqualFold(strings.TrimSpace(option.Text), strings.TrimSpace(userText)) {
			return option.NextStepID, true
		}
	}
	for _, option := range step.Options {
		if strings.Contains(strings.ToLower(option.Text), needle) {
			return option.NextStepID, true
		}
	}
	return "", false
}

// enumerateOptions перечисляет метки вариантов для промта сопоставления.
func enumerateOptions(step *models.Step) string {
	var b strings.Builder
	for i, option := range step.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, option.Text)
	}
	return b.String()
}

// ensureUniqueStepID гарантирует уникальность идентификатора нового шага
// относительно существующего набора шагов квеста.
func ensureUniqueStepID(quest *models.Quest, step *models.Step) {
	if quest == nil {
		return
	}
	if step.ID == "" || quest.HasStep(step.ID) {
		step.ID = fmt.Sprintf("step_%s", uuid.NewString()[:8])
	}
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
