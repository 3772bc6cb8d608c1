package memory

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/kquiz-api/internal/domain/entity"
)

// DefaultRetention — окно хранения сессии от момента создания.
// Это верхняя граница устаревания, а не точный будильник: запись может
// физически жить чуть дольше, но Get никогда её не вернёт после истечения.
const DefaultRetention = time.Hour

// maxHandleAttempts ограничивает число повторов при коллизии хендла
const maxHandleAttempts = 5

// SessionCache — процессный кеш сессий викторины: map хендл → QuizSet
// под единым RWMutex. Create, Get и Sweep безопасны при конкурентных
// вызовах из независимых обработчиков запросов.
type SessionCache struct {
	mu        sync.RWMutex
	sessions  map[string]*entity.QuizSet
	retention time.Duration
	now       func() time.Time // подменяется в тестах
}

// NewSessionCache создает кеш с заданным окном хранения.
// retention <= 0 трактуется как DefaultRetention.
func NewSessionCache(retention time.Duration) *SessionCache {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &SessionCache{
		sessions:  make(map[string]*entity.QuizSet),
		retention: retention,
		now:       time.Now,
	}
}

// newHandle генерирует хендл сессии: base36-префикс из текущего времени
// плюс случайный суффикс. Уникальность среди живых записей гарантирует
// проверка под write-локом в Create.
func newHandle(now time.Time) string {
	return strconv.FormatInt(now.UnixNano(), 36) + uuid.NewString()[:8]
}

// Create материализует набор вопросов и возвращает его хендл.
// Попутно выметает истекшие записи, чтобы кеш не требовал отдельного
// таймера для самоочистки.
func (c *SessionCache) Create(items []entity.Question) (string, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepExpired(now)

	for attempt := 0; attempt < maxHandleAttempts; attempt++ {
		handle := newHandle(now)
		if _, exists := c.sessions[handle]; exists {
			// Коллизия маловероятна, но трактуется как штатная — пробуем снова
			continue
		}
		c.sessions[handle] = &entity.QuizSet{
			Handle:    handle,
			Items:     items,
			CreatedAt: now,
		}
		return handle, nil
	}

	return "", fmt.Errorf("failed to allocate a unique session handle after %d attempts", maxHandleAttempts)
}

// Get возвращает набор по хендлу. Истекшая запись считается отсутствующей,
// даже если Sweep ещё не успел её удалить (TTL фиксирован от создания,
// чтение его не продлевает).
func (c *SessionCache) Get(handle string) (*entity.QuizSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	set, ok := c.sessions[handle]
	if !ok {
		return nil, false
	}
	if set.IsExpired(c.now(), c.retention) {
		return nil, false
	}
	return set, true
}

// Sweep удаляет все записи старше окна хранения и возвращает их число
func (c *SessionCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepExpired(now)
}

// sweepExpired выполняет очистку; вызывающий держит write-лок
func (c *SessionCache) sweepExpired(now time.Time) int {
	removed := 0
	for handle, set := range c.sessions {
		if set.IsExpired(now, c.retention) {
			delete(c.sessions, handle)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[SessionCache] Выметено %d истекших сессий, осталось %d", removed, len(c.sessions))
	}
	return removed
}

// Len возвращает количество живых записей (для тестов и метрик)
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}
