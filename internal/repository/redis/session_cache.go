package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/yourusername/kquiz-api/internal/domain/entity"
)

// keyPrefix — пространство ключей сессий в Redis
const keyPrefix = "quiz:session:"

// SessionCache — Redis-бекенд repository.SessionRepository для запуска
// нескольких инстансов за балансировщиком. Семантика та же, что у
// in-memory кеша: фиксированный TTL от создания, отсутствующий или
// истекший хендл — это not found, а не ошибка.
type SessionCache struct {
	client    redis.UniversalClient
	retention time.Duration
	ctx       context.Context
}

// NewSessionCache создает Redis-кеш сессий и возвращает ошибку при
// некорректных аргументах
func NewSessionCache(client redis.UniversalClient, retention time.Duration) (*SessionCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil for SessionCache")
	}
	if retention <= 0 {
		retention = time.Hour
	}
	return &SessionCache{
		client:    client,
		retention: retention,
		ctx:       context.Background(),
	}, nil
}

// Create сериализует набор в JSON и записывает под новым хендлом.
// SetNX обнаруживает коллизию хендлов; запись становится видимой только
// целиком.
func (c *SessionCache) Create(items []entity.Question) (string, error) {
	now := time.Now()
	set := entity.QuizSet{Items: items, CreatedAt: now}

	for attempt := 0; attempt < 5; attempt++ {
		handle := strconv.FormatInt(now.UnixNano(), 36) + uuid.NewString()[:8]
		set.Handle = handle

		data, err := json.Marshal(&set)
		if err != nil {
			return "", err
		}

		ok, err := c.client.SetNX(c.ctx, keyPrefix+handle, data, c.retention).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return handle, nil
		}
		// Ключ уже существует — коллизия, пробуем другой хендл
	}
	return "", fmt.Errorf("failed to allocate a unique session handle")
}

// Get читает набор по хендлу; срок жизни ключа не продлевается
func (c *SessionCache) Get(handle string) (*entity.QuizSet, bool) {
	data, err := c.client.Get(c.ctx, keyPrefix+handle).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// Инфраструктурная ошибка неотличима для клиента от истечения:
			// в обоих случаях правильная реакция — запросить новый набор
			log.Printf("[SessionCache] Ошибка чтения сессии %s из Redis: %v", handle, err)
		}
		return nil, false
	}

	var set entity.QuizSet
	if err := json.Unmarshal(data, &set); err != nil {
		log.Printf("[SessionCache] Повреждённая запись сессии %s: %v", handle, err)
		return nil, false
	}
	return &set, true
}

// Sweep — no-op: Redis удаляет ключи по TTL самостоятельно
func (c *SessionCache) Sweep(time.Time) int {
	return 0
}
