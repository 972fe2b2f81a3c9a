package bot

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"kidquest-server/internal/models"
	"kidquest-server/internal/utils"
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	session := b.loadOrNewSession(ctx, chatID)
	ui := uiFor(session.Language)

	switch message.Command() {
	case "start":
		b.send(tgbotapi.NewMessage(chatID, ui.Welcome))
	case "new":
		b.startNewQuest(ctx, chatID, session)
	case "back":
		b.goBack(ctx, session)
	case "history":
		b.showHistory(ctx, session)
	default:
		b.send(tgbotapi.NewMessage(chatID, ui.Welcome))
	}
}

// handleText маршрутизирует свободный текст: пока квест не начат, текст
// считается описанием требований; после начала — выбором пользователя.
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	session, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		if !errors.Is(err, models.ErrSessionNotFound) {
			b.logger.Error("Не удалось загрузить сессию", zap.Int64("chatID", chatID), zap.Error(err))
		}
		// Нет сессии — начинаем новый квест, как после /new.
		b.startNewQuest(ctx, chatID, models.NewUserSession(chatID))
		return
	}

	if !session.QuestStarted {
		b.handleRequirements(ctx, session, message.Text)
		return
	}
	b.handleChoice(ctx, session, message.Text)
}

// startNewQuest сбрасывает сессию и просит описать будущий квест.
func (b *Bot) startNewQuest(ctx context.Context, chatID int64, session *models.UserSession) {
	fresh := models.NewUserSession(chatID)
	fresh.Language = session.Language
	if err := b.sessions.Save(ctx, fresh); err != nil {
		b.logger.Error("Не удалось сохранить сессию", zap.Int64("chatID", chatID), zap.Error(err))
	}
	b.send(tgbotapi.NewMessage(chatID, uiFor(fresh.Language).NewQuestIntro))
}

// handleRequirements генерирует квест по описанию пользователя и
// показывает первый шаг.
func (b *Bot) handleRequirements(ctx context.Context, session *models.UserSession, requirements string) {
	chatID := session.ChatID
	session.Language = utils.DetectLanguage(requirements)
	ui := uiFor(session.Language)

	b.send(tgbotapi.NewMessage(chatID, ui.Generating))
	b.logger.Info("Генерация квеста",
		zap.Int64("chatID", chatID),
		zap.String("language", session.Language),
		zap.Int("requirementsLen", len(requirements)),
	)

	quest, err := b.engine.GenerateQuest(ctx, strconv.FormatInt(chatID, 10), requirements, session.Language)
	if err != nil {
		// Вызывающему не важно, какая из причин исчерпала бюджет попыток:
		// пользователь видит общий ответ "не получилось".
		b.logger.Warn("Генерация квеста не удалась", zap.Int64("chatID", chatID), zap.Error(err))
		b.send(tgbotapi.NewMessage(chatID, ui.GenerateFailed))
		return
	}

	session.Requirements = requirements
	session.Quest = quest
	session.QuestStarted = true
	session.StepHistory = nil
	session.PushStep(quest.StartStepID)
	if err := b.sessions.Save(ctx, session); err != nil {
		b.logger.Error("Не удалось сохранить сессию", zap.Int64("chatID", chatID), zap.Error(err))
		b.send(tgbotapi.NewMessage(chatID, ui.GenerateFailed))
		return
	}

	b.archiveQuest(ctx, session)
	b.sendCurrentStep(session)
}

// handleChoice продвигает пользователя по графу: сопоставляет ввод с
// вариантами шага, а при полном несовпадении создает новую ветку.
func (b *Bot) handleChoice(ctx context.Context, session *models.UserSession, userChoice string) {
	chatID := session.ChatID
	ui := uiFor(session.Language)
	userID := strconv.FormatInt(chatID, 10)

	step, ok := session.CurrentStep()
	if !ok {
		b.send(tgbotapi.NewMessage(chatID, ui.NoActiveQuest))
		return
	}
	if b.engine.IsQuestFinished(step) {
		b.send(tgbotapi.NewMessage(chatID, ui.QuestFinished))
		return
	}

	// Нажатие кнопки приходит с эмодзи-префиксом; такое совпадение
	// разрешаем сразу, без движка.
	nextStepID, matched := matchButtonLabel(step, userChoice)
	if !matched {
		var err error
		nextStepID, err = b.engine.ResolveChoice(ctx, userID, step, userChoice, session.Language)
		if errors.Is(err, models.ErrNoMatch) {
			botUpdatesTotal.WithLabelValues("branch").Inc()
			if !b.extendQuest(ctx, session, step, userChoice) {
				return
			}
			nextStepID = session.CurrentStepID
		} else if err != nil {
			b.logger.Error("Ошибка сопоставления выбора", zap.Int64("chatID", chatID), zap.Error(err))
			b.send(tgbotapi.NewMessage(chatID, ui.ChoiceError))
			return
		}
	}

	// Вариант может указывать на шаг, который ещё не сгенерирован
	// (цель ранее созданной ветки) — достраиваем граф на лету.
	if nextStepID != session.CurrentStepID && !session.Quest.HasStep(nextStepID) {
		botUpdatesTotal.WithLabelValues("branch").Inc()
		if !b.extendQuest(ctx, session, step, userChoice) {
			return
		}
	} else if nextStepID != session.CurrentStepID {
		session.PushStep(nextStepID)
	}

	if err := b.sessions.Save(ctx, session); err != nil {
		b.logger.Error("Не удалось сохранить сессию", zap.Int64("chatID", chatID), zap.Error(err))
	}
	b.sendCurrentStep(session)
}

// extendQuest создает новую ветку и делает её текущим шагом.
// Возвращает false, если расширить квест не удалось (пользователю уже
// отправлено сообщение об ошибке).
func (b *Bot) extendQuest(ctx context.Context, session *models.UserSession, step *models.Step, userChoice string) bool {
	chatID := session.ChatID
	ui := uiFor(session.Language)

	newStep, err := b.engine.CreateBranch(ctx, strconv.FormatInt(chatID, 10), session.Quest, step, userChoice, session.Language)
	if err != nil {
		b.logger.Warn("Создание ветки не удалось", zap.Int64("chatID", chatID), zap.Error(err))
		b.send(tgbotapi.NewMessage(chatID, ui.ExtendFailed))
		return false
	}

	session.Quest.AppendStep(*newStep)
	session.PushStep(newStep.ID)
	return true
}

// goBack возвращает пользователя на предыдущий шаг истории.
func (b *Bot) goBack(ctx context.Context, session *models.UserSession) {
	chatID := session.ChatID
	ui := uiFor(session.Language)

	if !session.QuestStarted {
		b.send(tgbotapi.NewMessage(chatID, ui.NoActiveQuest))
		return
	}
	if _, ok := session.PopStep(); !ok {
		b.send(tgbotapi.NewMessage(chatID, ui.NothingToGoBack))
		return
	}
	if err := b.sessions.Save(ctx, session); err != nil {
		b.logger.Error("Не удалось сохранить сессию", zap.Int64("chatID", chatID), zap.Error(err))
	}
	b.sendCurrentStep(session)
}

// sendCurrentStep отображает активный шаг; на концовке дополнительно
// предлагает начать новый квест.
func (b *Bot) sendCurrentStep(session *models.UserSession) {
	step, ok := session.CurrentStep()
	if !ok {
		b.send(tgbotapi.NewMessage(session.ChatID, uiFor(session.Language).NoActiveQuest))
		return
	}
	b.send(stepMessage(session.ChatID, step))
	if b.engine.IsQuestFinished(step) {
		b.send(tgbotapi.NewMessage(session.ChatID, uiFor(session.Language).QuestFinished))
	}
}

// archiveQuest сохраняет сгенерированный квест в PostgreSQL, если архив
// настроен. Ошибка архивации не прерывает игру.
func (b *Bot) archiveQuest(ctx context.Context, session *models.UserSession) {
	if b.quests == nil || session.Quest == nil {
		return
	}
	payload, err := json.Marshal(models.QuestEnvelope{Quest: *session.Quest})
	if err != nil {
		b.logger.Error("Не удалось сериализовать квест для архива", zap.Error(err))
		return
	}
	record := &models.QuestRecord{
		ChatID:       session.ChatID,
		Language:     session.Language,
		Requirements: session.Requirements,
		Title:        session.Quest.Title,
		Payload:      payload,
	}
	if err := b.quests.Save(ctx, record); err != nil {
		b.logger.Warn("Не удалось сохранить квест в архив", zap.Int64("chatID", session.ChatID), zap.Error(err))
	}
}

// showHistory перечисляет последние квесты чата из архива.
func (b *Bot) showHistory(ctx context.Context, session *models.UserSession) {
	chatID := session.ChatID
	ui := uiFor(session.Language)

	if b.quests == nil {
		b.send(tgbotapi.NewMessage(chatID, ui.HistoryEmpty))
		return
	}
	records, err := b.quests.ListRecentByChat(ctx, chatID, historyLimit)
	if err != nil {
		b.logger.Error("Не удалось прочитать архив квестов", zap.Int64("chatID", chatID), zap.Error(err))
		b.send(tgbotapi.NewMessage(chatID, ui.HistoryEmpty))
		return
	}
	if len(records) == 0 {
		b.send(tgbotapi.NewMessage(chatID, ui.HistoryEmpty))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, historyMessage(ui, records)))
}

// loadOrNewSession возвращает сессию чата либо пустую сессию.
func (b *Bot) loadOrNewSession(ctx context.Context, chatID int64) *models.UserSession {
	session, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		if !errors.Is(err, models.ErrSessionNotFound) {
			b.logger.Error("Не удалось загрузить сессию", zap.Int64("chatID", chatID), zap.Error(err))
		}
		return models.NewUserSession(chatID)
	}
	return session
}

// matchButtonLabel сверяет текст с подписями кнопок текущего шага
// (эмодзи + текст варианта).
func matchButtonLabel(step *models.Step, text string) (string, bool) {
	for _, option := range step.Options {
		if text == optionLabel(option) {
			return option.NextStepID, true
		}
	}
	return "", false
}
