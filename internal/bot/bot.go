// Package bot реализует Telegram-транспорт KidQuest-бота: маршрутизацию
// команд, захват требований, проход по шагам квеста и отображение вариантов
// выбора. Мутация графа квеста (добавление новых веток) живёт здесь, а не в
// движке: бот владеет сессией и сохраняет её после каждой операции.
package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"kidquest-server/internal/repository"
	"kidquest-server/internal/service"
)

var botUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kidquest_bot_updates_total",
		Help: "Total number of processed bot updates.",
	},
	[]string{"kind"},
)

// Bot связывает Telegram API, движок квестов и хранилища.
type Bot struct {
	api      *tgbotapi.BotAPI
	engine   *service.QuestEngine
	sessions repository.SessionRepository
	quests   repository.QuestRepository // nil, если архив отключён
	logger   *zap.Logger

	// Операции одного чата сериализуются: быстрый двойной ввод не должен
	// приводить к гонке на сессии.
	chatLocks sync.Map
}

// New создает бота поверх готового Telegram API клиента.
func New(
	api *tgbotapi.BotAPI,
	engine *service.QuestEngine,
	sessions repository.SessionRepository,
	quests repository.QuestRepository,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		api:      api,
		engine:   engine,
		sessions: sessions,
		quests:   quests,
		logger:   logger.Named("Bot"),
	}
}

// Run запускает цикл получения обновлений и блокируется до отмены контекста.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("Бот запущен", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Бот остановлен")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает одно сообщение под замком чата.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	lock := b.lockFor(message.Chat.ID)
	lock.Lock()
	defer lock.Unlock()

	if message.IsCommand() {
		botUpdatesTotal.With(prometheus.Labels{"kind": "command"}).Inc()
		b.handleCommand(ctx, message)
		return
	}
	botUpdatesTotal.With(prometheus.Labels{"kind": "text"}).Inc()
	b.handleText(ctx, message)
}

func (b *Bot) lockFor(chatID int64) *sync.Mutex {
	actual, _ := b.chatLocks.LoadOrStore(chatID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// send отправляет сообщение, логируя ошибку доставки.
func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Не удалось отправить сообщение", zap.Error(err))
	}
}
