package registry

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StartJanitor evicts sessions not accessed within the TTL window. Eviction
// takes the per-session lock first and releases the lock entry with the
// session.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				r.sweep(now)
			}
		}
	}()
}

func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	expired := r.expiredLocked(now)
	r.mu.Unlock()
	for _, id := range expired {
		if r.evict(id) {
			log.Info().Str("session_id", id).Msg("session evicted after ttl")
		}
	}
}
