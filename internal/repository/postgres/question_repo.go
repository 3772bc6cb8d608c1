package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/kquiz-api/internal/domain/entity"
	"github.com/yourusername/kquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/kquiz-api/internal/pkg/errors"
)

// Таймаут одного запроса к БД. По истечении запрос завершается
// как транзиентная ошибка, ретраи остаются на стороне вызывающего.
const queryTimeout = 5 * time.Second

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// applyFilters накладывает условия отбора на запрос.
// Фильтры комбинируются: категория — IN-набором, поиск — ILIKE по тексту.
func applyFilters(query *gorm.DB, filters repository.QuestionFilters) *gorm.DB {
	if len(filters.QuestTypes) > 0 {
		query = query.Where("quest_type IN ?", filters.QuestTypes)
	}
	if filters.Search != "" {
		query = query.Where("question ILIKE ?", "%"+filters.Search+"%")
	}
	return query
}

// wrapDBError переводит ошибки драйвера в ошибки приложения
func wrapDBError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err)
	}
	return err
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return wrapDBError(r.db.WithContext(ctx).Create(question).Error)
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var question entity.Question
	err := r.db.WithContext(ctx).First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, wrapDBError(err)
	}
	return &question, nil
}

// Update обновляет информацию о вопросе
func (r *QuestionRepo) Update(ctx context.Context, question *entity.Question) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return wrapDBError(r.db.WithContext(ctx).Save(question).Error)
}

// Delete удаляет вопрос
func (r *QuestionRepo) Delete(ctx context.Context, id uint) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result := r.db.WithContext(ctx).Delete(&entity.Question{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List возвращает страницу вопросов в порядке id вместе с общим числом
// строк, посчитанным под теми же фильтрами без учёта limit/offset
func (r *QuestionRepo) List(ctx context.Context, filters repository.QuestionFilters, limit, offset int) ([]entity.Question, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	total, err := r.countWithFilters(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	var questions []entity.Question
	query := applyFilters(r.db.WithContext(ctx).Model(&entity.Question{}), filters)
	if err := query.Order("id").Limit(limit).Offset(offset).Find(&questions).Error; err != nil {
		return nil, 0, wrapDBError(err)
	}
	return questions, total, nil
}

// GetRandom возвращает случайную выборку размером до limit.
// Postgres располагает эффективным ORDER BY RANDOM(), поэтому перемешивание
// остаётся на стороне хранилища.
func (r *QuestionRepo) GetRandom(ctx context.Context, filters repository.QuestionFilters, limit int) ([]entity.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var questions []entity.Question
	query := applyFilters(r.db.WithContext(ctx).Model(&entity.Question{}), filters)
	if err := query.Order("RANDOM()").Limit(limit).Find(&questions).Error; err != nil {
		return nil, wrapDBError(err)
	}
	return questions, nil
}

// Count возвращает число вопросов под фильтрами
func (r *QuestionRepo) Count(ctx context.Context, filters repository.QuestionFilters) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.countWithFilters(ctx, filters)
}

func (r *QuestionRepo) countWithFilters(ctx context.Context, filters repository.QuestionFilters) (int64, error) {
	var count int64
	query := applyFilters(r.db.WithContext(ctx).Model(&entity.Question{}), filters)
	if err := query.Count(&count).Error; err != nil {
		return 0, wrapDBError(err)
	}
	return count, nil
}
