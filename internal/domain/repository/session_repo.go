package repository

import (
	"time"

	"github.com/yourusername/kquiz-api/internal/domain/entity"
)

// SessionRepository определяет контракт кеша сессий викторины.
// Create и Get могут вызываться конкурентно из независимых обработчиков
// запросов; частично записанная сессия никогда не видна.
type SessionRepository interface {
	// Create материализует набор вопросов и возвращает уникальный хендл.
	// Хендл уникален среди живых записей; коллизия обнаруживается и
	// повторяется.
	Create(items []entity.Question) (string, error)

	// Get возвращает набор по хендлу. Отсутствующий или истекший хендл —
	// это не ошибка, а сигнал «запросите новый набор», поэтому возвращается
	// признак found вместо error.
	Get(handle string) (*entity.QuizSet, bool)

	// Sweep удаляет записи старше окна хранения относительно now и
	// возвращает число удалённых. Для бекендов с собственным TTL — no-op.
	Sweep(now time.Time) int
}
