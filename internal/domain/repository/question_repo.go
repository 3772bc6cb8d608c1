package repository

import (
	"context"

	"github.com/yourusername/kquiz-api/internal/domain/entity"
)

// QuestionFilters описывает условия отбора вопросов.
// Пустой QuestTypes означает отсутствие фильтра по категории,
// Search — регистронезависимый поиск подстроки в тексте вопроса.
type QuestionFilters struct {
	QuestTypes []string
	Search     string
}

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	GetByID(ctx context.Context, id uint) (*entity.Question, error)
	Update(ctx context.Context, question *entity.Question) error
	Delete(ctx context.Context, id uint) error

	// List возвращает страницу вопросов в стабильном порядке (по id)
	// вместе с общим числом строк под теми же фильтрами.
	List(ctx context.Context, filters QuestionFilters, limit, offset int) ([]entity.Question, int64, error)

	// GetRandom возвращает случайную выборку размером до limit
	GetRandom(ctx context.Context, filters QuestionFilters, limit int) ([]entity.Question, error)

	// Count возвращает число вопросов под фильтрами без учёта пагинации
	Count(ctx context.Context, filters QuestionFilters) (int64, error)
}
