package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yourusername/kquiz-api/internal/handler/dto"
	"github.com/yourusername/kquiz-api/internal/service"
	"github.com/yourusername/kquiz-api/internal/service/gameplay"
)

// PlayHandler обслуживает websocket-прохождение набора вопросов.
// Каждое соединение владеет собственной игровой сессией: состояние
// не разделяется между клиентами, поэтому машина состояний живёт
// внутри горутины соединения без блокировок.
type PlayHandler struct {
	quizSetService *service.QuizSetService
	upgrader       websocket.Upgrader
}

// NewPlayHandler создает обработчик игрового транспорта
func NewPlayHandler(quizSetService *service.QuizSetService) *PlayHandler {
	return &PlayHandler{
		quizSetService: quizSetService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type playInbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type playAnswerPayload struct {
	Choice int `json:"choice"` // 1-based номер варианта
}

type playOutbound struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type playStatePayload struct {
	Index     int                   `json:"index"` // 0-based номер текущего вопроса
	Total     int                   `json:"total"`
	Score     int                   `json:"score"`
	Locked    bool                  `json:"locked"`
	Completed bool                  `json:"completed"`
	Question  *dto.QuestionResponse `json:"question,omitempty"`
}

type playAnswerResult struct {
	Accepted bool `json:"accepted"`
	Correct  bool `json:"correct"`
	Answer   int  `json:"answer"` // правильный вариант, 1-based
	Score    int  `json:"score"`
}

type playSummaryPayload struct {
	Score int                              `json:"score"`
	Total int                              `json:"total"`
	Stats map[string]gameplay.CategoryStat `json:"stats"`
}

// Play апгрейдит соединение и гоняет игровой цикл над материализованным
// набором. Истекший или неизвестный session_id — событие "gone": клиент
// должен запросить новый набор, продолжение невозможно.
// GET /ws/play?session_id=<handle>
func (h *PlayHandler) Play(c *gin.Context) {
	handle := c.Query("session_id")
	if handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[PlayHandler] Ошибка апгрейда websocket: %v", err)
		return
	}
	defer conn.Close()

	set, err := h.quizSetService.GetQuizSet(handle)
	if err != nil {
		_ = conn.WriteJSON(playOutbound{Type: "gone", Payload: gin.H{"message": "session expired or unknown"}})
		return
	}

	session := gameplay.NewSession(set.Items)
	log.Printf("[PlayHandler] Начато прохождение сессии %s: %d вопросов", handle, session.Total())

	// Первое событие — текущее состояние; для пустого набора это сразу
	// завершённая сессия со счётом 0 из 0
	h.sendState(conn, session)
	if session.Completed() {
		h.sendSummary(conn, session)
	}

	// Все записи идут из этого же цикла, конкурентных писателей нет
	for {
		var inbound playInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[PlayHandler] Соединение сессии %s закрыто: %v", handle, err)
			}
			return
		}

		switch inbound.Type {
		case "answer":
			var payload playAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				_ = conn.WriteJSON(playOutbound{Type: "error", Payload: gin.H{"message": "invalid answer payload"}})
				continue
			}
			current := session.Current()
			accepted, correct := session.Answer(payload.Choice)
			result := playAnswerResult{
				Accepted: accepted,
				Correct:  correct,
				Score:    session.Score(),
			}
			if current != nil {
				result.Answer = current.CorrectOption
			}
			_ = conn.WriteJSON(playOutbound{Type: "answerResult", Payload: result})

		case "advance":
			// Переход без ответа поглощается как no-op: клиенту просто
			// возвращается неизменившееся состояние
			session.Advance()
			h.sendState(conn, session)
			if session.Completed() {
				h.sendSummary(conn, session)
			}

		case "reset":
			session.Reset()
			h.sendState(conn, session)

		default:
			_ = conn.WriteJSON(playOutbound{Type: "error", Payload: gin.H{"message": "unsupported message type"}})
		}
	}
}

// sendState отправляет клиенту снимок текущего состояния сессии
func (h *PlayHandler) sendState(conn *websocket.Conn, session *gameplay.Session) {
	state := playStatePayload{
		Index:     session.CurrentIndex(),
		Total:     session.Total(),
		Score:     session.Score(),
		Locked:    session.Locked(),
		Completed: session.Completed(),
	}
	if q := session.Current(); q != nil {
		resp := dto.NewQuestionResponse(q)
		state.Question = &resp
	}
	if err := conn.WriteJSON(playOutbound{Type: "state", Payload: state}); err != nil {
		log.Printf("[PlayHandler] Ошибка отправки состояния: %v", err)
	}
}

// sendSummary отправляет итог прохождения со статистикой по категориям
func (h *PlayHandler) sendSummary(conn *websocket.Conn, session *gameplay.Session) {
	summary := playSummaryPayload{
		Score: session.Score(),
		Total: session.Total(),
		Stats: session.CategoryStats(),
	}
	if err := conn.WriteJSON(playOutbound{Type: "summary", Payload: summary}); err != nil {
		log.Printf("[PlayHandler] Ошибка отправки итога: %v", err)
	}
}
