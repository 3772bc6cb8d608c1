package dto

import (
	"time"

	"github.com/yourusername/kquiz-api/internal/domain/entity"
	"github.com/yourusername/kquiz-api/internal/handler/helper"
	"github.com/yourusername/kquiz-api/internal/service"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту.
// Правильный ответ включается в ответ: проверка выбора происходит на
// стороне игрового клиента.
type QuestionResponse struct {
	ID            uint                    `json:"id"`
	Text          string                  `json:"question"`
	Options       []helper.QuestionOption `json:"options"`
	CorrectOption int                     `json:"ans"`
	QuestType     string                  `json:"quest_type"`
	MediaType     string                  `json:"type"`
	PicPath       string                  `json:"pic_path,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// QuizSetResponse представляет материализованный набор с метаданными
// пагинации и хендлом сессии
type QuizSetResponse struct {
	SessionID  string             `json:"session_id,omitempty"`
	Quiz       []QuestionResponse `json:"quiz"`
	Page       int                `json:"current_page"`
	TotalPages int                `json:"total_pages"`
	TotalItems int64              `json:"total_items"`
}

// PaginatedQuestionsResponse представляет пагинированный список вопросов
// для админки
type PaginatedQuestionsResponse struct {
	Questions []QuestionResponse `json:"questions"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	PerPage   int                `json:"per_page"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:            q.ID,
		Text:          q.Text,
		Options:       helper.ConvertOptionsToObjects(q.Options),
		CorrectOption: q.CorrectOption,
		QuestType:     q.QuestType,
		MediaType:     q.MediaType,
		PicPath:       q.PicPath,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

// NewListQuestionResponse создает слайс DTO для списка вопросов
func NewListQuestionResponse(questions []entity.Question) []QuestionResponse {
	list := make([]QuestionResponse, len(questions))
	for i := range questions {
		list[i] = NewQuestionResponse(&questions[i])
	}
	return list
}

// NewQuizSetResponse создает DTO для результата построения набора
func NewQuizSetResponse(result *service.QuizSetResult) *QuizSetResponse {
	return &QuizSetResponse{
		SessionID:  result.Handle,
		Quiz:       NewListQuestionResponse(result.Items),
		Page:       result.Page,
		TotalPages: result.TotalPages,
		TotalItems: result.TotalItems,
	}
}

// NewPaginatedQuestionsResponse создает DTO для пагинированного списка
func NewPaginatedQuestionsResponse(questions []entity.Question, total int64, page, perPage int) *PaginatedQuestionsResponse {
	return &PaginatedQuestionsResponse{
		Questions: NewListQuestionResponse(questions),
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}
}
