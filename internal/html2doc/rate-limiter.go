// Ограничение частоты запросов преобразования по IP адресу (скользящее окно).
package html2doc

import (
	"slices"
	"sync"
	"time"
)

const rateLimiterCleanupInterval = time.Minute

// RateLimiter хранилище попыток для middleware.RateLimiter: не больше maxAttempts запросов с одного IP за window.
type RateLimiter struct {
	// attempts IP → времена запросов внутри окна
	attempts map[string][]time.Time
	mu       sync.Mutex

	maxAttempts int
	window      time.Duration

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

func NewRateLimiter(maxAttempts int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// Allow проверяет лимит для ip и записывает попытку. Отклоненная попытка не записывается.
func (rl *RateLimiter) Allow(ip string) (bool, error) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := dropBefore(rl.attempts[ip], now.Add(-rl.window))
	if len(valid) >= rl.maxAttempts {
		rl.attempts[ip] = valid
		return false, nil
	}

	rl.attempts[ip] = append(valid, now)
	return true, nil
}

func (rl *RateLimiter) startCleanup() {
	ticker := time.NewTicker(rateLimiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup удаляет IP без попыток внутри окна
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.window)
	for ip, attempts := range rl.attempts {
		valid := dropBefore(attempts, cutoff)
		if len(valid) == 0 {
			delete(rl.attempts, ip)
			continue
		}
		rl.attempts[ip] = valid
	}
}

// Stop останавливает фоновую очистку. Повторный вызов безопасен.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func dropBefore(attempts []time.Time, cutoff time.Time) []time.Time {
	return slices.DeleteFunc(attempts, func(t time.Time) bool {
		return !t.After(cutoff)
	})
}
