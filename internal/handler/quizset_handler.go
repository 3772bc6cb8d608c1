package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/kquiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/kquiz-api/internal/pkg/errors"
	"github.com/yourusername/kquiz-api/internal/service"
)

// Ограничения публичного отбора наборов
const (
	defaultQuizLimit = 10
	maxQuizLimit     = 100
)

// QuizSetHandler обрабатывает публичные запросы на построение и получение
// наборов вопросов
type QuizSetHandler struct {
	quizSetService *service.QuizSetService
}

// NewQuizSetHandler создает новый обработчик наборов
func NewQuizSetHandler(quizSetService *service.QuizSetService) *QuizSetHandler {
	return &QuizSetHandler{quizSetService: quizSetService}
}

// GetQuiz строит новый набор по критериям отбора либо возвращает ранее
// материализованный набор по session_id
// GET /api/quiz?quest_type=Topik,Food&order=rand&limit=10&page=1
// GET /api/quiz?id=42
// GET /api/quiz?session_id=<handle>
func (h *QuizSetHandler) GetQuiz(c *gin.Context) {
	if handle := c.Query("session_id"); handle != "" {
		h.getBySession(c, handle)
		return
	}

	req, ok := h.parseBuildRequest(c)
	if !ok {
		return
	}

	result, err := h.quizSetService.BuildQuizSet(c.Request.Context(), req)
	if err != nil {
		h.handleQuizSetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizSetResponse(result))
}

// getBySession возвращает сохраненный набор. Истекший или неизвестный
// хендл — 404, клиент должен запросить новый набор.
func (h *QuizSetHandler) getBySession(c *gin.Context, handle string) {
	set, err := h.quizSetService.GetQuizSet(handle)
	if err != nil {
		h.handleQuizSetError(c, err)
		return
	}

	c.JSON(http.StatusOK, &dto.QuizSetResponse{
		SessionID:  set.Handle,
		Quiz:       dto.NewListQuestionResponse(set.Items),
		Page:       1,
		TotalPages: 1,
		TotalItems: int64(len(set.Items)),
	})
}

// parseBuildRequest собирает критерии отбора из query-параметров.
// "All" в quest_type означает отсутствие фильтра по категории.
func (h *QuizSetHandler) parseBuildRequest(c *gin.Context) (service.BuildRequest, bool) {
	req := service.BuildRequest{
		Order:  c.DefaultQuery("order", service.OrderRandom),
		Search: c.Query("search"),
		Limit:  defaultQuizLimit,
		Page:   1,
	}

	if questType := c.Query("quest_type"); questType != "" && questType != "All" {
		req.QuestTypes = strings.Split(questType, ",")
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return service.BuildRequest{}, false
		}
		if limit > maxQuizLimit {
			limit = maxQuizLimit
		}
		req.Limit = limit
	}

	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
			return service.BuildRequest{}, false
		}
		req.Page = page
	}

	if idStr := c.Query("id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
			return service.BuildRequest{}, false
		}
		questionID := uint(id)
		req.ID = &questionID
	}

	return req, true
}

// handleQuizSetError обрабатывает ошибки сервиса наборов
func (h *QuizSetHandler) handleQuizSetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrBackendUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage temporarily unavailable, retry later"})
	default:
		log.Printf("ERROR: Internal server error in QuizSetHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
