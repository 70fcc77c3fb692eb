package cache

import (
	"context"
	"log"
	"time"
)

// Evictor кэш, умеющий удалять истёкшие записи.
type Evictor interface {
	EvictExpired() int
}

// Janitor периодически чистит истёкшие записи кэша.
type Janitor struct {
	cache    Evictor
	interval time.Duration
	logger   *log.Logger
}

// NewJanitor создаёт чистильщик. interval по умолчанию минута.
func NewJanitor(cache Evictor, interval time.Duration, logger *log.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Janitor{
		cache:    cache,
		interval: interval,
		logger:   logger,
	}
}

// Start запускает чистку в отдельной горутине и останавливается по ctx.Done().
// Возвращаемый канал закрывается после остановки.
func (j *Janitor) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(j.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := j.cache.EvictExpired(); n > 0 {
					j.logger.Printf("cache janitor evicted %d expired entries", n)
				}
			}
		}
	}()
	return done
}
