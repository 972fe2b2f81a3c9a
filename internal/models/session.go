package models

// UserSession — состояние одного пользователя бота. Сериализуется в JSON
// и хранится в Redis по идентификатору чата. Движок квестов это состояние
// не трогает: каждая операция получает квест и текущий шаг явно.
type UserSession struct {
	ChatID        int64    `json:"chatId"`
	Requirements  string   `json:"requirements,omitempty"`
	Quest         *Quest   `json:"quest,omitempty"`
	CurrentStepID string   `json:"currentStepId,omitempty"`
	StepHistory   []string `json:"stepHistory,omitempty"`
	QuestStarted  bool     `json:"questStarted"`
	Language      string   `json:"language,omitempty"`
}

// NewUserSession создает пустую сессию для чата.
func NewUserSession(chatID int64) *UserSession {
	return &UserSession{ChatID: chatID}
}

// CurrentStep возвращает активный шаг квеста, если он есть.
func (s *UserSession) CurrentStep() (*Step, bool) {
	if s.Quest == nil || s.CurrentStepID == "" {
		return nil, false
	}
	return s.Quest.StepByID(s.CurrentStepID)
}

// PushStep делает шаг активным и записывает его в историю посещений.
func (s *UserSession) PushStep(stepID string) {
	s.CurrentStepID = stepID
	s.StepHistory = append(s.StepHistory, stepID)
}

// PopStep возвращается к предыдущему шагу истории.
// Возвращает false, если отступать некуда.
func (s *UserSession) PopStep() (string, bool) {
	if len(s.StepHistory) < 2 {
		return "", false
	}
	s.StepHistory = s.StepHistory[:len(s.StepHistory)-1]
	s.CurrentStepID = s.StepHistory[len(s.StepHistory)-1]
	return s.CurrentStepID, true
}
