// Package prompts содержит шаблоны промтов для трёх операций движка:
// генерация квеста, сопоставление выбора пользователя и создание новой ветки.
// Все функции чистые и детерминированные. Структурные требования к JSON
// в тексте промтов являются протокольным контрактом с AI.
package prompts

import "fmt"

// Поддерживаемые языки промтов.
const (
	LanguageRU = "ru"
	LanguageEN = "en"
)

// Normalize приводит код языка к поддерживаемому значению.
// Неизвестный язык трактуется как русский.
func Normalize(language string) string {
	if language == LanguageEN {
		return LanguageEN
	}
	return LanguageRU
}

// QuestGenerationPrompt строит промт для создания нового квеста
// по свободному описанию требований пользователя.
func QuestGenerationPrompt(requirements, language string) string {
	if Normalize(language) == LanguageEN {
		return fmt.Sprintf(questGenerationTemplateEN, requirements)
	}
	return fmt.Sprintf(questGenerationTemplateRU, requirements)
}

// ChoiceMatchingPrompt строит промт для сопоставления свободного ввода
// пользователя с перечисленными вариантами выбора.
func ChoiceMatchingPrompt(userChoice, optionsText, language string) string {
	if Normalize(language) == LanguageEN {
		return fmt.Sprintf(choiceMatchingTemplateEN, userChoice, optionsText)
	}
	return fmt.Sprintf(choiceMatchingTemplateRU, userChoice, optionsText)
}

// NewBranchPrompt строит промт для создания нового шага квеста, когда
// ни один из вариантов не подошёл. Текст текущего шага передаётся как
// нарративный контекст.
func NewBranchPrompt(userChoice, currentStepText, language string) string {
	if Normalize(language) == LanguageEN {
		return fmt.Sprintf(newBranchTemplateEN, userChoice, currentStepText)
	}
	return fmt.Sprintf(newBranchTemplateRU, userChoice, currentStepText)
}

const questGenerationTemplateRU = `
Создай текстовый квест для детей (возраст 5-7 лет) на основе следующих требований:

%s

Квест должен быть:
- Простым и понятным для маленьких детей
- Образовательным, но веселым
- Содержать 3-5 основных шагов с вариантами выбора
- Иметь интересные образы (животные, магия, природа)
- Включать несколько концовок

Ответ должен быть в формате JSON со следующей структурой:
{
    "quest": {
        "title": "Название квеста",
        "startStepId": "step_1",
        "steps": [
            {
                "id": "step_1",
                "image": "Описание изображения для шага",
                "text": "Текст сценария шага",
                "options": [
                    {
                        "text": "Вариант выбора 1",
                        "nextStepId": "step_2a",
                        "emoji": "😀"
                    }
                ]
            }
        ]
    }
}

Верни ответ строго в виде валидного JSON, без лишнего текста, комментариев или пояснений.
Убедись, что JSON соответствует стандарту (двойные кавычки, правильная структура, запятые и т.д.).

Важно:
- Используй только русский язык
- Сделай сценарий дружелюбным и мотивирующим для детей
- Каждый шаг должен содержать 2-3 варианта выбора
- Концовки должны быть позитивными и образовательными
`

const questGenerationTemplateEN = `
Create a text-based quest for children (ages 5-7) based on the following requirements:

%s

The quest should be:
- Simple and understandable for young children
- Educational but fun
- Contain 3-5 main steps with choice options
- Include interesting characters (animals, magic, nature)
- Have multiple endings

Response must be in JSON format with the following structure:
{
    "quest": {
        "title": "Quest title",
        "startStepId": "step_1",
        "steps": [
            {
                "id": "step_1",
                "image": "Image description for step",
                "text": "Scenario text for step",
                "options": [
                    {
                        "text": "Choice option 1",
                        "nextStepId": "step_2a",
                        "emoji": "😀"
                    }
                ]
            }
        ]
    }
}

Return the response strictly in valid JSON format, without extra text, comments or explanations.
Make sure the JSON conforms to the standard (double quotes, correct structure, commas, etc.).

Important:
- Use only English language
- Make the scenario friendly and motivating for children
- Each step should contain 2-3 choice options
- Endings must be positive and educational
`

const choiceMatchingTemplateRU = `
Пользователь выбрал: "%s"

Варианты выбора:
%s

Определи, какой вариант выбора наиболее соответствует ответу пользователя.
Верни только текст выбранного варианта.
Если ни один вариант не подходит, верни "None".
`

const choiceMatchingTemplateEN = `
User selected: "%s"

Choice options:
%s

Determine which choice option best matches the user's response.
Return only the text of the matching choice option.
If no option fits, return "None".
`

const newBranchTemplateRU = `
Пользователь выбрал: "%s"

Текущий шаг:
%s

Создай новый шаг квеста, который соответствует выбору пользователя.
Шаг должен быть логичным продолжением истории и содержать 2-3 варианта выбора.

Ответ должен быть в формате JSON со следующей структурой:
{
    "id": "step_new_1",
    "image": "Описание изображения для нового шага",
    "text": "Текст сценария нового шага",
    "options": [
        {
            "text": "Вариант выбора 1",
            "nextStepId": "step_new_2a",
            "emoji": "😀"
        }
    ]
}

Верни ответ строго в виде валидного JSON, без лишнего текста, комментариев или пояснений.
Убедись, что JSON соответствует стандарту (двойные кавычки, правильная структура, запятые и т.д.).

Важно:
- Используй только русский язык
- Сделай сценарий дружелюбным и мотивирующим для детей
- Каждый шаг должен содержать 2-3 варианта выбора
`

const newBranchTemplateEN = `
User selected: "%s"

Current step:
%s

Create a new quest step that corresponds to the user's choice.
The step should be a logical continuation of the story and contain 2-3 choice options.

Response must be in JSON format with the following structure:
{
    "id": "step_new_1",
    "image": "Image description for new step",
    "text": "New step scenario text",
    "options": [
        {
            "text": "Choice option 1",
            "nextStepId": "step_new_2a",
            "emoji": "😀"
        }
    ]
}

Return the response strictly in valid JSON format, without extra text, comments or explanations.
Make sure the JSON conforms to the standard (double quotes, correct structure, commas, etc.).

Important:
- Use only English language
- Make the scenario friendly and motivating for children
- Each step should contain 2-3 choice options
`
