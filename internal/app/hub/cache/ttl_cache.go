package cache

import (
	"sync"
	"time"
)

// entry - закешированное значение с отметкой времени записи
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTLCache - обобщённый in-memory кеш с ограниченным временем жизни записей.
// Вытеснение ленивое: устаревшая запись считается промахом при чтении
// и физически удаляется только перезаписью или явной инвалидацией.
// Фоновой очистки нет, размер ограничен только количеством различных ключей.
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// NewTTLCache создает новый кеш с заданным временем жизни записей
func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get возвращает значение по ключу.
// Запись старше TTL считается промахом, но не удаляется - удаление ленивое.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	if c.now().Sub(e.storedAt) >= c.ttl {
		var zero V
		return zero, false
	}

	return e.value, true
}

// Put сохраняет значение, перезаписывая существующую запись
func (c *TTLCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:    value,
		storedAt: c.now(),
	}
}

// Invalidate удаляет запись по ключу
func (c *TTLCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear удаляет все записи
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]entry[V])
}

// Len возвращает количество записей, включая устаревшие
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
