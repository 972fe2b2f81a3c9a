package service

import (
	"fmt"

	"kidquest-server/internal/models"
)

// ValidateQuestGraph проверяет, что квест образует корректный направленный
// ациклический граф: один вход (стартовый шаг), достижимость всех шагов и
// хотя бы одна концовка. Проверки идут от дешёвых к дорогим и обрываются
// на первом нарушении. Причина отказа нужна только для диагностики:
// вызывающий код реагирует на любой отказ одинаково (повторной попыткой).
func ValidateQuestGraph(quest *models.Quest) error {
	if quest == nil || len(quest.Steps) == 0 {
		return fmt.Errorf("%w: quest has no steps", models.ErrInvalidQuestGraph)
	}

	stepSet := make(map[string]struct{}, len(quest.Steps))
	for _, step := range quest.Steps {
		if step.ID == "" {
			return fmt.Errorf("%w: step with empty id", models.ErrInvalidQuestGraph)
		}
		if _, exists := stepSet[step.ID]; exists {
			return fmt.Errorf("%w: duplicate step id '%s'", models.ErrInvalidQuestGraph, step.ID)
		}
		stepSet[step.ID] = struct{}{}
	}

	if _, ok := stepSet[quest.StartStepID]; !ok {
		return fmt.Errorf("%w: startStepId '%s' not found in steps", models.ErrInvalidQuestGraph, quest.StartStepID)
	}

	// Все ссылки nextStepId должны указывать на существующие шаги.
	for _, step := range quest.Steps {
		for _, option := range step.Options {
			if _, ok := stepSet[option.NextStepID]; !ok {
				return fmt.Errorf("%w: nextStepId '%s' referenced by step '%s' does not exist",
					models.ErrInvalidQuestGraph, option.NextStepID, step.ID)
			}
		}
	}

	if err := checkNoCycles(quest); err != nil {
		return err
	}
	return checkHasOutputs(quest)
}

// checkNoCycles ищет циклы топологическим обходом (алгоритм Кана),
// засеянным только стартовым шагом. Если обработаны не все шаги, в графе
// есть цикл либо недостижимый шаг.
func checkNoCycles(quest *models.Quest) error {
	adjacency := make(map[string][]string, len(quest.Steps))
	inDegree := make(map[string]int, len(quest.Steps))
	for _, step := range quest.Steps {
		adjacency[step.ID] = nil
		inDegree[step.ID] = 0
	}
	for _, step := range quest.Steps {
		for _, option := range step.Options {
			adjacency[step.ID] = append(adjacency[step.ID], option.NextStepID)
			inDegree[option.NextStepID]++
		}
	}

	queue := []string{quest.StartStepID}
	visited := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range adjacency[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visited != len(quest.Steps) {
		return fmt.Errorf("%w: cycle or unreachable step detected (visited %d of %d steps)",
			models.ErrInvalidQuestGraph, visited, len(quest.Steps))
	}
	return nil
}

// checkHasOutputs требует наличия хотя бы одного шага без входящих рёбер.
// Это проверка здравого смысла структуры, а не строгое доказательство
// единственности входа: её проходит как минимум стартовый шаг.
func checkHasOutputs(quest *models.Quest) error {
	incoming := make(map[string]struct{})
	for _, step := range quest.Steps {
		for _, option := range step.Options {
			incoming[option.NextStepID] = struct{}{}
		}
	}
	for _, step := range quest.Steps {
		if _, has := incoming[step.ID]; !has {
			return nil
		}
	}
	return fmt.Errorf("%w: no step without incoming edges found", models.ErrInvalidQuestGraph)
}
