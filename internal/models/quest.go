package models

// Quest — полный артефакт квеста: название, идентификатор стартового шага
// и набор шагов. Шаги после генерации не удаляются; граф растет только
// добавлением новых шагов при динамическом ветвлении.
type Quest struct {
	Title       string `json:"title"`
	StartStepID string `json:"startStepId"`
	Steps       []Step `json:"steps"`
}

// Step — один узел графа квеста.
// Шаг без вариантов выбора является концовкой.
type Step struct {
	ID      string   `json:"id"`
	Image   string   `json:"image"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Option — направленное ребро графа: текст выбора, идентификатор
// следующего шага и эмодзи для отображения.
type Option struct {
	Text       string `json:"text"`
	NextStepID string `json:"nextStepId"`
	Emoji      string `json:"emoji,omitempty"`
}

// QuestEnvelope — обёртка wire-формата {"quest": {...}}, в которой
// генератор возвращает полный квест.
type QuestEnvelope struct {
	Quest Quest `json:"quest"`
}

// StepByID возвращает шаг по идентификатору.
func (q *Quest) StepByID(id string) (*Step, bool) {
	for i := range q.Steps {
		if q.Steps[i].ID == id {
			return &q.Steps[i], true
		}
	}
	return nil, false
}

// HasStep сообщает, существует ли шаг с данным идентификатором.
func (q *Quest) HasStep(id string) bool {
	_, ok := q.StepByID(id)
	return ok
}

// AppendStep добавляет новый шаг в набор шагов квеста.
// Существующие шаги никогда не изменяются.
func (q *Quest) AppendStep(step Step) {
	q.Steps = append(q.Steps, step)
}

// IsTerminal сообщает, является ли шаг концовкой (нет исходящих рёбер).
func (s *Step) IsTerminal() bool {
	return len(s.Options) == 0
}
