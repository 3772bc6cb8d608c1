package service

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/yourusername/kquiz-api/internal/domain/entity"
	"github.com/yourusername/kquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/kquiz-api/internal/pkg/errors"
)

// QuestionService предоставляет методы админки для работы с вопросами
type QuestionService struct {
	questionRepo repository.QuestionRepository
	images       repository.ImageStore
}

// NewQuestionService создает сервис вопросов.
// images может быть nil — тогда вопросы с изображениями отклоняются.
func NewQuestionService(questionRepo repository.QuestionRepository, images repository.ImageStore) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		images:       images,
	}
}

// QuestionInput — данные формы создания/обновления вопроса
type QuestionInput struct {
	Text          string
	Options       []string
	CorrectOption int
	QuestType     string
	ImageName     string // имя загружаемого файла; пустое = текстовый вопрос
	ImageData     []byte
}

// CreateQuestion создает вопрос; при наличии изображения сначала загружает
// его во внешнее хранилище и сохраняет полученный pic_path
func (s *QuestionService) CreateQuestion(ctx context.Context, input QuestionInput) (*entity.Question, error) {
	question := &entity.Question{
		Text:          input.Text,
		Options:       entity.StringArray(input.Options),
		CorrectOption: input.CorrectOption,
		QuestType:     input.QuestType,
		MediaType:     entity.MediaTypeText,
	}

	if len(input.ImageData) > 0 {
		if s.images == nil {
			return nil, fmt.Errorf("%w: image store is not configured", apperrors.ErrValidation)
		}
		picPath, err := s.images.Upload(ctx, imageFileName(input.ImageName), input.ImageData)
		if err != nil {
			return nil, err
		}
		question.MediaType = entity.MediaTypePicture
		question.PicPath = picPath
	}

	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	log.Printf("[QuestionService] Создан вопрос #%d (%s, %s)", question.ID, question.QuestType, question.MediaType)
	return question, nil
}

// GetQuestion возвращает вопрос по ID
func (s *QuestionService) GetQuestion(ctx context.Context, id uint) (*entity.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// UpdateQuestion обновляет текст, варианты, правильный ответ и категорию.
// Изображение и media-тип при обновлении не меняются: для смены картинки
// вопрос пересоздаётся.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id uint, input QuestionInput) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	question.Text = input.Text
	question.Options = entity.StringArray(input.Options)
	question.CorrectOption = input.CorrectOption
	question.QuestType = input.QuestType

	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

// DeleteQuestion удаляет вопрос вместе с его изображением.
// Недоступность хранилища изображений не блокирует удаление записи:
// осиротевший файл — меньшее зло, чем неудаляемый вопрос.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uint) error {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if question.PicPath != "" && s.images != nil {
		if err := s.images.Delete(ctx, question.PicPath); err != nil {
			log.Printf("[QuestionService] Не удалось удалить изображение %s вопроса #%d: %v",
				question.PicPath, id, err)
		}
	}

	return s.questionRepo.Delete(ctx, id)
}

// ListQuestions возвращает страницу вопросов с общим числом строк
func (s *QuestionService) ListQuestions(ctx context.Context, filters repository.QuestionFilters, page, pageSize int) ([]entity.Question, int64, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, fmt.Errorf("%w: page and page_size must be positive", apperrors.ErrValidation)
	}
	offset := (page - 1) * pageSize
	return s.questionRepo.List(ctx, filters, pageSize, offset)
}

// AllQuestions возвращает все вопросы под фильтрами (для экспорта)
func (s *QuestionService) AllQuestions(ctx context.Context, filters repository.QuestionFilters) ([]entity.Question, error) {
	// Limit(-1) в GORM снимает ограничение выборки
	items, _, err := s.questionRepo.List(ctx, filters, -1, 0)
	return items, err
}

// imageFileName строит имя файла в хранилище: миллисекундный префикс
// плюс базовое имя без путевых компонентов
func imageFileName(original string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), base)
}
