package service

import (
	"context"
	"fmt"
	"log"

	"github.com/yourusername/kquiz-api/internal/domain/entity"
	"github.com/yourusername/kquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/kquiz-api/internal/pkg/errors"
)

// Режимы упорядочивания набора
const (
	OrderSequential = "id"   // стабильный порядок по id с пагинацией
	OrderRandom     = "rand" // случайная выборка размером limit
)

// BuildRequest описывает критерии отбора набора вопросов
type BuildRequest struct {
	QuestTypes []string // пустой список = без фильтра по категории
	Order      string   // OrderSequential | OrderRandom
	Limit      int
	Page       int   // имеет смысл только при OrderSequential
	ID         *uint // точный отбор по id; остальные фильтры игнорируются
	Search     string
}

// QuizSetResult — материализованный набор вместе с метаданными пагинации
type QuizSetResult struct {
	Handle     string
	Items      []entity.Question
	Page       int
	TotalPages int
	TotalItems int64
}

// QuizSetService транслирует запрос отбора в один запрос к репозиторию
// вопросов и одну запись в кеше сессий
type QuizSetService struct {
	questionRepo repository.QuestionRepository
	sessions     repository.SessionRepository
}

// NewQuizSetService создает сервис наборов вопросов
func NewQuizSetService(questionRepo repository.QuestionRepository, sessions repository.SessionRepository) *QuizSetService {
	return &QuizSetService{
		questionRepo: questionRepo,
		sessions:     sessions,
	}
}

// BuildQuizSet выполняет отбор, регистрирует результат в кеше сессий и
// возвращает хендл вместе с набором. Некорректные limit/page отклоняются
// до обращения к репозиторию и кешу. Пустой результат валиден: набор из
// нуля вопросов тоже материализуется.
func (s *QuizSetService) BuildQuizSet(ctx context.Context, req BuildRequest) (*QuizSetResult, error) {
	if req.ID != nil {
		return s.buildByID(ctx, *req.ID)
	}

	if req.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", apperrors.ErrValidation, req.Limit)
	}
	if req.Page <= 0 {
		return nil, fmt.Errorf("%w: page must be positive, got %d", apperrors.ErrValidation, req.Page)
	}
	for _, questType := range req.QuestTypes {
		if !entity.IsValidQuestType(questType) {
			return nil, fmt.Errorf("%w: unknown quest type %q", apperrors.ErrValidation, questType)
		}
	}

	filters := repository.QuestionFilters{
		QuestTypes: req.QuestTypes,
		Search:     req.Search,
	}

	var (
		items []entity.Question
		total int64
		err   error
	)

	switch req.Order {
	case OrderRandom:
		items, err = s.questionRepo.GetRandom(ctx, filters, req.Limit)
		if err != nil {
			return nil, err
		}
		total, err = s.questionRepo.Count(ctx, filters)
		if err != nil {
			return nil, err
		}
	case OrderSequential:
		offset := (req.Page - 1) * req.Limit
		items, total, err = s.questionRepo.List(ctx, filters, req.Limit, offset)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown order mode %q", apperrors.ErrValidation, req.Order)
	}

	handle, err := s.sessions.Create(items)
	if err != nil {
		return nil, fmt.Errorf("failed to register quiz session: %w", err)
	}

	log.Printf("[QuizSetService] Создана сессия %s: %d вопросов (order=%s, page=%d)",
		handle, len(items), req.Order, req.Page)

	return &QuizSetResult{
		Handle:     handle,
		Items:      items,
		Page:       req.Page,
		TotalPages: totalPages(total, req.Limit),
		TotalItems: total,
	}, nil
}

// buildByID обрабатывает точечный запрос: единственный вопрос по id.
// Отсутствие вопроса — NOT_FOUND, в кеш ничего не пишется.
func (s *QuizSetService) buildByID(ctx context.Context, id uint) (*QuizSetResult, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items := []entity.Question{*question}
	handle, err := s.sessions.Create(items)
	if err != nil {
		return nil, fmt.Errorf("failed to register quiz session: %w", err)
	}

	return &QuizSetResult{
		Handle:     handle,
		Items:      items,
		Page:       1,
		TotalPages: 1,
		TotalItems: 1,
	}, nil
}

// GetQuizSet возвращает ранее материализованный набор по хендлу.
// Истекший или неизвестный хендл — ErrNotFound: клиент запрашивает
// новый набор, ретраи бессмысленны.
func (s *QuizSetService) GetQuizSet(handle string) (*entity.QuizSet, error) {
	set, ok := s.sessions.Get(handle)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return set, nil
}

// totalPages считает число страниц: ceil(total/limit)
func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}
