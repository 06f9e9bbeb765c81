package abusesvc

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Friend-Renter/fr-marketing-api/config"
	"github.com/Friend-Renter/fr-marketing-api/internal/logger"
)

// CatalogLimiter giới hạn tần suất gọi catalog xe theo IP.
// Khác với ingestion, catalog là fail-open: Redis chết thì chuyển
// sang token bucket trong bộ nhớ thay vì chặn người dùng duyệt xe.
type CatalogLimiter struct {
	store     CounterStore
	namespace string
	max       int64

	mu       sync.Mutex
	fallback map[string]*rate.Limiter
}

// NewCatalogLimiter khởi tạo CatalogLimiter từ cấu hình server
func NewCatalogLimiter(store CounterStore, cfg *config.Configuration) *CatalogLimiter {
	return &CatalogLimiter{
		store:     store,
		namespace: cfg.Redis_Namespace,
		max:       int64(cfg.Vehicles_RateMax),
		fallback:  make(map[string]*rate.Limiter),
	}
}

// Allow kiểm tra IP còn trong ngưỡng 1 phút không.
// Redis lỗi → dùng limiter trong bộ nhớ với cùng ngưỡng.
func (l *CatalogLimiter) Allow(ctx context.Context, ip string) bool {
	key := l.namespace + ":rl:veh1m:" + ip
	count, err := l.store.IncrementWithTTL(ctx, key, time.Minute)
	if err != nil {
		logger.GetAppLogger().WithError(err).Warn("Catalog limiter chuyển sang chế độ in-memory")
		return l.allowLocal(ip)
	}
	return count <= l.max
}

// allowLocal là token bucket per-IP trong bộ nhớ, chỉ dùng khi Redis down.
// Map không bị dọn — chấp nhận vì chế độ fallback là tạm thời và số IP
// trong một khoảng Redis outage là hữu hạn.
func (l *CatalogLimiter) allowLocal(ip string) bool {
	l.mu.Lock()
	lim, ok := l.fallback[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(l.max)/60.0), int(l.max))
		l.fallback[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
