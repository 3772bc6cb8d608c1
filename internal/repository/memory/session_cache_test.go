package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kquiz-api/internal/domain/entity"
)

func testItems() []entity.Question {
	return []entity.Question{
		{ID: 1, Text: "q1", QuestType: entity.QuestTypeTopik, CorrectOption: 1},
		{ID: 2, Text: "q2", QuestType: entity.QuestTypeFood, CorrectOption: 2},
	}
}

func TestSessionCache_CreateAndGet(t *testing.T) {
	// Arrange
	cache := NewSessionCache(time.Hour)

	// Act
	handle, err := cache.Create(testItems())

	// Assert
	require.NoError(t, err)
	require.NotEmpty(t, handle)

	set, ok := cache.Get(handle)
	require.True(t, ok, "Свежесозданная сессия должна находиться по хендлу")
	assert.Equal(t, handle, set.Handle)
	assert.Len(t, set.Items, 2)
}

func TestSessionCache_GetUnknownHandle(t *testing.T) {
	cache := NewSessionCache(time.Hour)

	set, ok := cache.Get("no-such-handle")

	assert.False(t, ok, "Неизвестный хендл — not found, не ошибка")
	assert.Nil(t, set)
}

func TestSessionCache_EmptySetIsValid(t *testing.T) {
	// Пустой результат отбора тоже материализуется
	cache := NewSessionCache(time.Hour)

	handle, err := cache.Create(nil)
	require.NoError(t, err)

	set, ok := cache.Get(handle)
	require.True(t, ok)
	assert.Empty(t, set.Items)
}

func TestSessionCache_ExpiredEntryIsInvisible(t *testing.T) {
	// Arrange: управляем временем через подменяемые часы
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewSessionCache(time.Hour)
	cache.now = func() time.Time { return current }

	handle, err := cache.Create(testItems())
	require.NoError(t, err)

	// Act: до истечения окна запись видна
	_, ok := cache.Get(handle)
	require.True(t, ok)

	// Сдвигаем время за пределы окна хранения
	current = current.Add(time.Hour + time.Second)

	// Assert: запись невидима ещё до физического удаления
	_, ok = cache.Get(handle)
	assert.False(t, ok, "Истекшая сессия не должна возвращаться, даже если Sweep не выполнялся")
	assert.Equal(t, 1, cache.Len(), "Физически запись ещё лежит в map до очистки")
}

func TestSessionCache_GetDoesNotExtendTTL(t *testing.T) {
	// Arrange
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewSessionCache(time.Hour)
	cache.now = func() time.Time { return current }

	handle, err := cache.Create(testItems())
	require.NoError(t, err)

	// Act: читаем за минуту до истечения
	current = current.Add(59 * time.Minute)
	_, ok := cache.Get(handle)
	require.True(t, ok)

	// Чтение не продлило срок жизни
	current = current.Add(2 * time.Minute)

	// Assert
	_, ok = cache.Get(handle)
	assert.False(t, ok, "TTL фиксирован от создания, Get его не продлевает")
}

func TestSessionCache_CreateSweepsExpired(t *testing.T) {
	// Arrange
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewSessionCache(time.Hour)
	cache.now = func() time.Time { return current }

	_, err := cache.Create(testItems())
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	// Act: через два часа создаем новую сессию
	current = current.Add(2 * time.Hour)
	handle, err := cache.Create(testItems())
	require.NoError(t, err)

	// Assert: истекшая запись вымелась, живая осталась
	assert.Equal(t, 1, cache.Len(), "Create должен попутно выметать истекшие записи")
	_, ok := cache.Get(handle)
	assert.True(t, ok)
}

func TestSessionCache_Sweep(t *testing.T) {
	// Arrange
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewSessionCache(time.Hour)
	cache.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		_, err := cache.Create(testItems())
		require.NoError(t, err)
	}

	// Act
	removed := cache.Sweep(current.Add(90 * time.Minute))

	// Assert
	assert.Equal(t, 3, removed)
	assert.Equal(t, 0, cache.Len())
}

func TestSessionCache_ConcurrentCreateDistinctHandles(t *testing.T) {
	// Arrange
	cache := NewSessionCache(time.Hour)
	const workers = 50

	var wg sync.WaitGroup
	handles := make(chan string, workers)

	// Act: конкурентные материализации из независимых обработчиков
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handle, err := cache.Create(testItems())
			assert.NoError(t, err)
			handles <- handle
		}()
	}
	wg.Wait()
	close(handles)

	// Assert: все хендлы уникальны и каждый разрешается в свою запись
	seen := make(map[string]bool)
	for handle := range handles {
		assert.False(t, seen[handle], "Хендл %s выдан дважды", handle)
		seen[handle] = true

		_, ok := cache.Get(handle)
		assert.True(t, ok)
	}
	assert.Equal(t, workers, cache.Len())
}
