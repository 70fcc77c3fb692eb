package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultTTL время жизни записи, если ttl не задан.
const DefaultTTL = 10 * time.Minute

// Cache хранилище ключ → значение с ограниченным временем жизни.
// В многоинстансной установке заменяется на общий кэш с тем же интерфейсом.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
}

// MemoryCache кэш в памяти процесса. Срок жизни считается от записи, чтение его не продлевает.
type MemoryCache[V any] struct {
	ttl   time.Duration
	items *ttlcache.Cache[string, V]
}

// NewMemoryCache создаёт кэш в памяти. ttl <= 0 означает DefaultTTL.
// Истёкшие записи удаляет Janitor, собственный цикл очистки ttlcache не запускается.
func NewMemoryCache[V any](ttl time.Duration) *MemoryCache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache[V]{
		ttl: ttl,
		items: ttlcache.New[string, V](
			ttlcache.WithTTL[string, V](ttl),
			ttlcache.WithDisableTouchOnHit[string, V](),
		),
	}
}

// Get возвращает значение, если запись есть и не истекла.
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	item := c.items.Get(key)
	if item == nil {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

// Set сохраняет значение и отсчитывает ttl заново.
func (c *MemoryCache[V]) Set(key string, value V) {
	c.items.Set(key, value, ttlcache.DefaultTTL)
}

// Len число записей, включая ещё не вычищенные истёкшие.
func (c *MemoryCache[V]) Len() int {
	return c.items.Len()
}

// EvictExpired удаляет истёкшие записи и возвращает, сколько их было.
// При параллельных Set число приблизительное.
func (c *MemoryCache[V]) EvictExpired() int {
	before := c.items.Len()
	c.items.DeleteExpired()
	if removed := before - c.items.Len(); removed > 0 {
		return removed
	}
	return 0
}
