package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kquiz-api/internal/domain/entity"
	"github.com/yourusername/kquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/kquiz-api/internal/pkg/errors"
)

// ============================================================================
// Моки репозиториев для тестов сервисного слоя
// ============================================================================

// helper для создания pointer
func uintPtr(v uint) *uint { return &v }

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *entity.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *entity.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repository.QuestionFilters, limit, offset int) ([]entity.Question, int64, error) {
	args := m.Called(ctx, filters, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Question), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) GetRandom(ctx context.Context, filters repository.QuestionFilters, limit int) ([]entity.Question, error) {
	args := m.Called(ctx, filters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) Count(ctx context.Context, filters repository.QuestionFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionRepository реализует repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(items []entity.Question) (string, error) {
	args := m.Called(items)
	return args.String(0), args.Error(1)
}

func (m *MockSessionRepository) Get(handle string) (*entity.QuizSet, bool) {
	args := m.Called(handle)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*entity.QuizSet), args.Bool(1)
}

func (m *MockSessionRepository) Sweep(now time.Time) int {
	args := m.Called(now)
	return args.Int(0)
}

// ============================================================================
// Тесты QuizSetService
// ============================================================================

func sampleQuestions(n int) []entity.Question {
	items := make([]entity.Question, n)
	for i := range items {
		items[i] = entity.Question{
			ID:            uint(i + 1),
			Text:          "q",
			Options:       entity.StringArray{"a", "b", "c", "d"},
			CorrectOption: 1,
			QuestType:     entity.QuestTypeTopik,
			MediaType:     entity.MediaTypeText,
		}
	}
	return items
}

func TestBuildQuizSet_Random(t *testing.T) {
	// Arrange
	questionRepo := new(MockQuestionRepository)
	sessions := new(MockSessionRepository)
	svc := NewQuizSetService(questionRepo, sessions)

	items := sampleQuestions(5)
	filters := repository.QuestionFilters{QuestTypes: []string{entity.QuestTypeTopik}}
	questionRepo.On("GetRandom", mock.Anything, filters, 5).Return(items, nil)
	questionRepo.On("Count", mock.Anything, filters).Return(int64(12), nil)
	sessions.On("Create", items).Return("handle-1", nil)

	// Act
	result, err := svc.BuildQuizSet(context.Background(), BuildRequest{
		QuestTypes: []string{entity.QuestTypeTopik},
		Order:      OrderRandom,
		Limit:      5,
		Page:       1,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "handle-1", result.Handle)
	assert.Len(t, result.Items, 5)
	assert.Equal(t, int64(12), result.TotalItems)
	assert.Equal(t, 3, result.TotalPages, "ceil(12/5) = 3")
	questionRepo.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestBuildQuizSet_SequentialPagination(t *testing.T) {
	// Arrange
	questionRepo := new(MockQuestionRepository)
	sessions := new(MockSessionRepository)
	svc := NewQuizSetService(questionRepo, sessions)

	items := sampleQuestions(10)
	// Страница 3 при limit=10 — смещение 20
	questionRepo.On("List", mock.Anything, repository.QuestionFilters{}, 10, 20).
		Return(items, int64(35), nil)
	sessions.On("Create", items).Return("handle-2", nil)

	// Act
	result, err := svc.BuildQuizSet(context.Background(), BuildRequest{
		Order: OrderSequential,
		Limit: 10,
		Page:  3,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.Page)
	assert.Equal(t, 4, result.TotalPages, "ceil(35/10) = 4")
	questionRepo.AssertExpectations(t)
}

func TestBuildQuizSet_InvalidLimit(t *testing.T) {
	// Arrange
	questionRepo := new(MockQuestionRepository)
	sessions := new(MockSessionRepository)
	svc := NewQuizSetService(questionRepo, sessions)

	// Act: limit=-1 отклоняется до обращения к хранилищу и кешу
	_, err := svc.BuildQuizSet(context.Background(), BuildRequest{
		Order: OrderRandom,
		Limit: -1,
		Page:  1,
	})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	questionRepo.AssertNotCalled(t, "GetRandom", mock.Anything, mock.Anything, mock.Anything)
	sessions.AssertNotCalled(t, "Create", mock.Anything)
}

func TestBuildQuizSet_UnknownQuestType(t *testing.T) {
	// Arrange
	questionRepo := new(MockQuestionRepository)
	sessions := new(MockSessionRepository)
	svc := NewQuizSetService(questionRepo, sessions)

	// Act
	_, err := svc.BuildQuizSet(context.Background(), BuildRequest{
		QuestTypes: []string{"Sports"},
		Order:      OrderRandom,
		Limit:      10,
		Page:       1,
	})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	sessions.AssertNotCalled(t, "Create", mock.Anything)
}

func TestBuildQuizSet_UnknownOrder(t *testing.T) {
	questionRepo := new(MockQuestionRepository)
	sessions := new(MockSessionRepository)
	svc := NewQuizSetService(questionRepo, sessions)

	_, err := svc.BuildQuizSet(context.Background(), BuildRequest{
		Order: "shuffled",
		Limit: 10,
		Page:  1,
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBuildQuizSet_EmptyResultIsMaterialized(t *testing.T) {
	// Arrange: отбор без совпадений — валидный набор из нуля вопросов
	questionRepo := new(MockQuestionRepository)
	sessions := new(MockSessionRepository)
	svc := NewQuizSetService(questionRepo, sessions)

	filters := repository.QuestionFilters{QuestTypes: []string{entity.QuestTypeCulture}}
	questionRepo.On("GetRandom", mock.Anything, filters, 10).Return([]entity.Question{}, nil)
	questionRepo.On("Count", mock.Anything, filters).Return(int64(0), nil)
	sessions.On("Create", []entity.Question{}).Return("empty-handle", nil)

	// Act
	result, err := svc.BuildQuizSet(context.Background(), BuildRequest{
		QuestTypes: []string{entity.QuestTypeCulture},
		Order:      OrderRandom,
		Limit:      10,
		Page:       1,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "empty-handle", result.Handle)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.TotalPages)
	sessions.AssertExpectations(t)
}

func TestBuildQuizSet_ByID_Found(t *testing.T) {
	// Arrange
	questionRepo := new(MockQuestionRepository)
	sessions := new(MockSessionRepository)
	svc := NewQuizSetService(questionRepo, sessions)

	question := &sampleQuestions(1)[0]
	questionRepo.On("GetByID", mock.Anything, uint(42)).Return(question, nil)
	sessions.On("Create", []entity.Question{*question}).Return("single-handle", nil)

	// Act: при заданном id остальные фильтры игнорируются
	result, err := svc.BuildQuizSet(context.Background(), BuildRequest{
		ID:    uintPtr(42),
		Order: "ignored",
		Limit: -5,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "single-handle", result.Handle)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, int64(1), result.TotalItems)
}

func TestBuildQuizSet_ByID_NotFound(t *testing.T) {
	// Arrange
	questionRepo := new(MockQuestionRepository)
	sessions := new(MockSessionRepository)
	svc := NewQuizSetService(questionRepo, sessions)

	questionRepo.On("GetByID", mock.Anything, uint(404)).Return(nil, apperrors.ErrNotFound)

	// Act
	_, err := svc.BuildQuizSet(context.Background(), BuildRequest{ID: uintPtr(404)})

	// Assert: отсутствие вопроса — NOT_FOUND, в кеш ничего не пишется
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	sessions.AssertNotCalled(t, "Create", mock.Anything)
}

func TestGetQuizSet(t *testing.T) {
	// Arrange
	questionRepo := new(MockQuestionRepository)
	sessions := new(MockSessionRepository)
	svc := NewQuizSetService(questionRepo, sessions)

	set := &entity.QuizSet{Handle: "live", Items: sampleQuestions(2)}
	sessions.On("Get", "live").Return(set, true)
	sessions.On("Get", "expired").Return(nil, false)

	// Act & Assert: живой хендл
	got, err := svc.GetQuizSet("live")
	require.NoError(t, err)
	assert.Equal(t, set, got)

	// Истекший или неизвестный хендл — ErrNotFound
	_, err = svc.GetQuizSet("expired")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(10, 10))
	assert.Equal(t, 2, totalPages(11, 10))
	assert.Equal(t, 0, totalPages(5, 0), "Некорректный limit не должен делить на ноль")
}
