package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kidquest-server/internal/models"
	"kidquest-server/internal/prompts"
)

// uiMessages — служебные тексты бота на одном языке.
type uiMessages struct {
	Welcome         string
	NewQuestIntro   string
	Generating      string
	GenerateFailed  string
	ExtendFailed    string
	ChoiceError     string
	QuestFinished   string
	NothingToGoBack string
	NoActiveQuest   string
	HistoryHeader   string
	HistoryEmpty    string
}

// Сколько квестов показывает /history.
const historyLimit = 5

var messagesRU = uiMessages{
	Welcome: "👋 Привет! Я KidQuestBot - твой помощник в создании " +
		"восхитительных текстовых квестов для детей!\n\n" +
		"Напиши /new, чтобы начать новый квест!",
	NewQuestIntro: "🌟 Давай создадим вместе новый квест!\n\n" +
		"Расскажи мне, о чём будет твой квест: \n" +
		"- Тема (например: приключения в лесу, подводная жизнь, космическое путешествие)\n" +
		"- Главный герой (например: маленький дракон, умная белка, робот-исследователь)\n" +
		"- Образовательный элемент (например: изучение животных, основы математики, природные явления)\n" +
		"- Сколько шагов должно быть в квесте?\n\n" +
		"Пиши всё свободным текстом - я сделаю из этого отличную историю!",
	Generating:      "✨ Создаю квест, это займёт немного времени...",
	GenerateFailed:  "Извини, не удалось создать квест. Попробуй ещё раз с другими словами.",
	ExtendFailed:    "Извини, не удалось продолжить историю. Попробуй выбрать один из вариантов.",
	ChoiceError:     "Произошла ошибка при обработке твоего выбора. Попробуй ещё раз.",
	QuestFinished:   "🎉 Квест завершён! Напиши /new, чтобы начать новый.",
	NothingToGoBack: "Ты в самом начале квеста, возвращаться некуда.",
	NoActiveQuest:   "Сейчас нет активного квеста. Напиши /new, чтобы начать!",
	HistoryHeader:   "📜 Твои последние квесты:",
	HistoryEmpty:    "Пока нет сохранённых квестов. Напиши /new, чтобы создать первый!",
}

var messagesEN = uiMessages{
	Welcome: "👋 Hi! I'm KidQuestBot - your helper for creating " +
		"delightful text quests for children!\n\n" +
		"Send /new to start a new quest!",
	NewQuestIntro: "🌟 Let's create a new quest together!\n\n" +
		"Tell me what your quest will be about: \n" +
		"- Theme (e.g. forest adventures, underwater life, space travel)\n" +
		"- Main character (e.g. a little dragon, a clever squirrel, a robot explorer)\n" +
		"- Educational element (e.g. learning about animals, basic math, natural phenomena)\n" +
		"- How many steps should the quest have?\n\n" +
		"Write it all as free text - I'll turn it into a great story!",
	Generating:      "✨ Creating your quest, this will take a moment...",
	GenerateFailed:  "Sorry, I could not create the quest. Try again with different words.",
	ExtendFailed:    "Sorry, I could not continue the story. Try picking one of the options.",
	ChoiceError:     "Something went wrong while processing your choice. Please try again.",
	QuestFinished:   "🎉 The quest is finished! Send /new to start another one.",
	NothingToGoBack: "You are at the very beginning of the quest, nowhere to go back.",
	NoActiveQuest:   "There is no active quest right now. Send /new to start one!",
	HistoryHeader:   "📜 Your recent quests:",
	HistoryEmpty:    "No saved quests yet. Send /new to create your first one!",
}

func uiFor(language string) uiMessages {
	if prompts.Normalize(language) == prompts.LanguageEN {
		return messagesEN
	}
	return messagesRU
}

// stepMessage собирает сообщение для шага квеста: описание образа,
// текст сценария и клавиатуру с вариантами выбора.
func stepMessage(chatID int64, step *models.Step) tgbotapi.MessageConfig {
	var b strings.Builder
	if step.Image != "" {
		fmt.Fprintf(&b, "🖼 %s\n\n", step.Image)
	}
	b.WriteString(step.Text)

	msg := tgbotapi.NewMessage(chatID, b.String())
	if len(step.Options) == 0 {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		return msg
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(step.Options))
	for _, option := range step.Options {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(optionLabel(option)),
		))
	}
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.OneTimeKeyboard = true
	msg.ReplyMarkup = keyboard
	return msg
}

// historyMessage перечисляет архивные квесты в одном сообщении.
func historyMessage(ui uiMessages, records []models.QuestRecord) string {
	var b strings.Builder
	b.WriteString(ui.HistoryHeader)
	for i, record := range records {
		fmt.Fprintf(&b, "\n%d. %s (%s)", i+1, record.Title, record.CreatedAt.Format("02.01.2006"))
	}
	return b.String()
}

// optionLabel формирует подпись кнопки: эмодзи плюс текст варианта.
func optionLabel(option models.Option) string {
	if option.Emoji == "" {
		return option.Text
	}
	return option.Emoji + " " + option.Text
}
