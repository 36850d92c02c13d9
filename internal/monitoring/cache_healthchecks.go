package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15

type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorCacheHealth pings the cache every interval and stores the outcome in
// healthy. It only logs transitions. It returns when ctx is cancelled.
func MonitorCacheHealth(ctx context.Context, cache Pinger, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second * HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckCache(ctx, cache, healthy)
		}
	}
}

func CheckCache(ctx context.Context, cache Pinger, healthy *atomic.Bool) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := cache.Ping(pingCtx)
	isHealthy := err == nil
	was := healthy.Swap(isHealthy)

	switch {
	case was && !isHealthy:
		slog.Warn("[HealthCheck] Cache is unhealthy, bypassing it", slog.String("error", err.Error()))
	case !was && isHealthy:
		slog.Info("[HealthCheck] Cache is healthy again")
	}
	return isHealthy
}
