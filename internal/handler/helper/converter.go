package helper

import (
	"github.com/yourusername/kquiz-api/internal/domain/entity"
)

// QuestionOption представляет вариант ответа для фронтенда
type QuestionOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// ConvertOptionsToObjects преобразует массив строк в массив объектов с id и text.
// ID использует 1-based индексацию для совместимости с CorrectOption
func ConvertOptionsToObjects(options entity.StringArray) []QuestionOption {
	converted := make([]QuestionOption, len(options))
	for i, opt := range options {
		// Добавляем дополнительную проверку на пустые строки
		if opt == "" {
			opt = "(пустой вариант)"
		}
		converted[i] = QuestionOption{ID: i + 1, Text: opt}
	}
	return converted
}
