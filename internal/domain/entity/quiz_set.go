package entity

import "time"

// QuizSet — материализованный снимок набора вопросов, привязанный к
// одноразовому хендлу сессии. Список Items фиксирует порядок показа и не
// изменяется после создания: набор либо присутствует целиком, либо
// отсутствует.
type QuizSet struct {
	Handle    string     `json:"session_id"`
	Items     []Question `json:"quiz"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsExpired сообщает, истекла ли сессия относительно момента now
func (s *QuizSet) IsExpired(now time.Time, retention time.Duration) bool {
	return now.Sub(s.CreatedAt) > retention
}
