package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/kquiz-api/internal/domain/entity"
	"github.com/yourusername/kquiz-api/internal/domain/repository"
	"github.com/yourusername/kquiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/kquiz-api/internal/pkg/errors"
	"github.com/yourusername/kquiz-api/internal/service"
)

// maxImageSize ограничивает размер загружаемого изображения (5 МБ)
const maxImageSize = 5 << 20

// QuestionHandler обрабатывает запросы админки, связанные с вопросами
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// parseFilters собирает фильтры списка из query-параметров
func parseFilters(c *gin.Context) repository.QuestionFilters {
	filters := repository.QuestionFilters{
		Search: c.Query("search"),
	}
	if questType := c.Query("quest_type"); questType != "" && questType != "All" {
		filters.QuestTypes = strings.Split(questType, ",")
	}
	return filters
}

// ListQuestions возвращает пагинированный список вопросов
// GET /api/questions?page=1&page_size=10&quest_type=Topik&search=...
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	questions, total, err := h.questionService.ListQuestions(c.Request.Context(), parseFilters(c), page, pageSize)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedQuestionsResponse(questions, total, page, pageSize))
}

// CreateQuestion создает вопрос из multipart-формы с опциональным изображением
// POST /api/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	input, ok := h.bindQuestionForm(c)
	if !ok {
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), input)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question))
}

// bindQuestionForm читает поля формы question/option1..4/ans/quest_type
// и опциональный файл image
func (h *QuestionHandler) bindQuestionForm(c *gin.Context) (service.QuestionInput, bool) {
	ans, err := strconv.Atoi(c.PostForm("ans"))
	if err != nil || ans < 1 || ans > entity.OptionCount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ans must be an integer between 1 and 4"})
		return service.QuestionInput{}, false
	}

	input := service.QuestionInput{
		Text:          c.PostForm("question"),
		CorrectOption: ans,
		QuestType:     c.PostForm("quest_type"),
		Options: []string{
			c.PostForm("option1"),
			c.PostForm("option2"),
			c.PostForm("option3"),
			c.PostForm("option4"),
		},
	}

	fileHeader, err := c.FormFile("image")
	if err == nil && fileHeader != nil {
		if fileHeader.Size > maxImageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image is too large (5MB max)"})
			return service.QuestionInput{}, false
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
			return service.QuestionInput{}, false
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
			return service.QuestionInput{}, false
		}
		input.ImageName = fileHeader.Filename
		input.ImageData = data
	}

	return input, true
}

// GetQuestion возвращает вопрос по ID
// GET /api/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint) // Получаем из контекста

	question, err := h.questionService.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// UpdateQuestionRequest представляет запрос на обновление вопроса.
// Изображение и media-тип при обновлении не меняются.
type UpdateQuestionRequest struct {
	Text          string `json:"question" binding:"required,min=1,max=500"`
	Option1       string `json:"option1" binding:"required"`
	Option2       string `json:"option2" binding:"required"`
	Option3       string `json:"option3" binding:"required"`
	Option4       string `json:"option4" binding:"required"`
	CorrectOption int    `json:"ans" binding:"required,min=1,max=4"`
	QuestType     string `json:"quest_type" binding:"required"`
}

// UpdateQuestion обновляет текст, варианты, ответ и категорию вопроса
// PUT /api/questions/:id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.QuestionInput{
		Text:          req.Text,
		Options:       []string{req.Option1, req.Option2, req.Option3, req.Option4},
		CorrectOption: req.CorrectOption,
		QuestType:     req.QuestType,
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), questionID, input)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// DeleteQuestion удаляет вопрос вместе с его изображением
// DELETE /api/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.questionService.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// ExportQuestions экспортирует банк вопросов в CSV или Excel формате
// GET /api/questions/export?format=csv|xlsx
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	questions, err := h.questionService.AllQuestions(c.Request.Context(), parseFilters(c))
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	filename := fmt.Sprintf("questions_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, questions, filename)
	default:
		h.exportCSV(c, questions, filename)
	}
}

// exportCSV экспортирует вопросы в CSV с правильным экранированием спецсимволов
func (h *QuestionHandler) exportCSV(c *gin.Context, questions []entity.Question, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// Заголовки
	writer.Write([]string{"ID", "Вопрос", "Вариант 1", "Вариант 2", "Вариант 3", "Вариант 4", "Ответ", "Категория", "Тип", "Изображение"})

	// Данные
	for _, q := range questions {
		row := []string{strconv.FormatUint(uint64(q.ID), 10), sanitizeForExcel(q.Text)}
		for i := 0; i < entity.OptionCount; i++ {
			opt := ""
			if i < len(q.Options) {
				opt = sanitizeForExcel(q.Options[i])
			}
			row = append(row, opt)
		}
		row = append(row, strconv.Itoa(q.CorrectOption), q.QuestType, q.MediaType, q.PicPath)
		writer.Write(row)
	}
}

// exportXLSX экспортирует вопросы в Excel с использованием StreamWriter
func (h *QuestionHandler) exportXLSX(c *gin.Context, questions []entity.Question, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Вопросы"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[QuestionHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	// Заголовки
	headers := []interface{}{"ID", "Вопрос", "Вариант 1", "Вариант 2", "Вариант 3", "Вариант 4", "Ответ", "Категория", "Тип", "Изображение"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[QuestionHandler] Ошибка записи заголовков: %v", err)
	}

	// Данные
	for i, q := range questions {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		row := []interface{}{q.ID, sanitizeForExcel(q.Text)}
		for j := 0; j < entity.OptionCount; j++ {
			opt := ""
			if j < len(q.Options) {
				opt = sanitizeForExcel(q.Options[j])
			}
			row = append(row, opt)
		}
		row = append(row, q.CorrectOption, q.QuestType, q.MediaType, q.PicPath)

		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[QuestionHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[QuestionHandler] Ошибка при Flush: %v", err)
	}

	// Записываем в response
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[QuestionHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleQuestionError обрабатывает ошибки сервисов и отправляет соответствующий HTTP ответ
func (h *QuestionHandler) handleQuestionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrBackendUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage temporarily unavailable, retry later"})
	case errors.Is(err, apperrors.ErrImageStore):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in QuestionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
