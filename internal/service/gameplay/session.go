package gameplay

import (
	"github.com/yourusername/kquiz-api/internal/domain/entity"
)

// CategoryStat — итог по одной категории: сколько вопросов всего и
// сколько отвечено верно. Total фиксируется при создании сессии,
// Correct растёт по мере фиксации ответов.
type CategoryStat struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// Session — машина состояний одного прохождения набора вопросов.
// Принадлежит ровно одному игровому взаимодействию и не разделяется
// между горутинами, поэтому не содержит блокировок. Любой переход
// вне очереди (повторный ответ, Advance без ответа, действия после
// завершения) поглощается как no-op — дубликаты и опоздавшие события
// от интерактивного клиента ожидаемы и не являются ошибками.
type Session struct {
	items        []entity.Question
	currentIndex int
	locked       bool
	score        int
	stats        map[string]*CategoryStat
	completed    bool
}

// NewSession создает сессию над фиксированным списком вопросов.
// Пустой список сразу даёт завершённую сессию со счётом 0 из 0.
func NewSession(items []entity.Question) *Session {
	s := &Session{
		items: items,
		stats: make(map[string]*CategoryStat),
	}
	for _, q := range items {
		stat, ok := s.stats[q.QuestType]
		if !ok {
			stat = &CategoryStat{}
			s.stats[q.QuestType] = stat
		}
		stat.Total++
	}
	if len(items) == 0 {
		s.completed = true
	}
	return s
}

// Answer фиксирует ответ на текущий вопрос. Засчитывается только первый
// ответ: пока locked, повторные вызовы ничего не меняют. Возвращает,
// был ли ответ принят и был ли он правильным.
func (s *Session) Answer(choice int) (accepted bool, correct bool) {
	if s.completed || s.locked {
		return false, false
	}

	question := &s.items[s.currentIndex]
	s.locked = true

	if question.IsCorrect(choice) {
		s.score++
		s.stats[question.QuestType].Correct++
		return true, true
	}
	return true, false
}

// Advance переходит к следующему вопросу. Без зафиксированного ответа
// перехода нет — пропускать вопросы нельзя. На последнем вопросе
// сессия завершается.
func (s *Session) Advance() bool {
	if s.completed || !s.locked {
		return false
	}
	if s.currentIndex == len(s.items)-1 {
		s.completed = true
		return true
	}
	s.currentIndex++
	s.locked = false
	return true
}

// Reset возвращает сессию к начальному состоянию над тем же набором
func (s *Session) Reset() {
	s.currentIndex = 0
	s.locked = false
	s.score = 0
	s.completed = len(s.items) == 0
	for _, stat := range s.stats {
		stat.Correct = 0
	}
}

// Completed сообщает, достигнуто ли терминальное состояние
func (s *Session) Completed() bool {
	return s.completed
}

// Locked сообщает, зафиксирован ли ответ на текущий вопрос
func (s *Session) Locked() bool {
	return s.locked
}

// CurrentIndex возвращает 0-based номер текущего вопроса
func (s *Session) CurrentIndex() int {
	return s.currentIndex
}

// Current возвращает текущий вопрос; nil для завершённой сессии
func (s *Session) Current() *entity.Question {
	if s.completed {
		return nil
	}
	return &s.items[s.currentIndex]
}

// Score возвращает количество правильных ответов
func (s *Session) Score() int {
	return s.score
}

// Total возвращает размер набора
func (s *Session) Total() int {
	return len(s.items)
}

// CategoryStats возвращает копию статистики по категориям
func (s *Session) CategoryStats() map[string]CategoryStat {
	out := make(map[string]CategoryStat, len(s.stats))
	for questType, stat := range s.stats {
		out[questType] = *stat
	}
	return out
}
