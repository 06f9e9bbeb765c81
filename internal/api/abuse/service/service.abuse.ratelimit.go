package abusesvc

import (
	"context"
	"fmt"
	"time"

	"github.com/Friend-Renter/fr-marketing-api/config"
	"github.com/Friend-Renter/fr-marketing-api/internal/common"
	"github.com/Friend-Renter/fr-marketing-api/internal/logger"
	"github.com/Friend-Renter/fr-marketing-api/internal/utility"
)

// Các cửa sổ rate limit cố định (fixed window, không trượt)
const (
	windowBurst = 10 * time.Minute
	windowDaily = 24 * time.Hour
)

// RateLimitService kiểm tra các ngưỡng chống abuse trên Redis.
// Tất cả counter dùng cửa sổ cố định: INCR + EXPIRE lần đầu.
// Với ingestion, lỗi store là fail-closed (trả 500, không nhận lead).
type RateLimitService struct {
	store       CounterStore
	namespace   string
	emailSecret string
	ipBurst     int64 // ngưỡng IP trong 10 phút
	ipDaily     int64 // ngưỡng IP trong 24 giờ
	emailDaily  int64 // ngưỡng email trong 24 giờ (quick capture)
	enrichDaily int64 // ngưỡng email trong 24 giờ (enrichment)
}

// NewRateLimitService khởi tạo RateLimitService từ cấu hình server
func NewRateLimitService(store CounterStore, cfg *config.Configuration) *RateLimitService {
	return &RateLimitService{
		store:       store,
		namespace:   cfg.Redis_Namespace,
		emailSecret: cfg.EmailHashSecret(),
		ipBurst:     int64(cfg.RateLimit_IPBurst),
		ipDaily:     int64(cfg.RateLimit_IPDaily),
		emailDaily:  int64(cfg.RateLimit_EmailDaily),
		enrichDaily: int64(cfg.RateLimit_EnrichDaily),
	}
}

// limitCheck mô tả một ngưỡng cần kiểm tra
type limitCheck struct {
	key       string
	ttl       time.Duration
	threshold int64
}

// CheckCapture kiểm tra 3 ngưỡng cho quick capture: IP/10 phút,
// IP/ngày, email/ngày. Counter tăng TRƯỚC khi so sánh, nên request
// bị chặn vẫn tính vào cửa sổ. Vượt bất kỳ ngưỡng nào → 429,
// không tiết lộ ngưỡng nào bị vượt.
func (s *RateLimitService) CheckCapture(ctx context.Context, ip, email string) error {
	checks := []limitCheck{
		{s.key("rl:ip10m", ip), windowBurst, s.ipBurst},
		{s.key("rl:ip1d", ip), windowDaily, s.ipDaily},
		{s.key("rl:em1d", utility.HmacEmail(email, s.emailSecret)), windowDaily, s.emailDaily},
	}
	return s.runChecks(ctx, checks)
}

// CheckEnrich kiểm tra ngưỡng enrichment: chỉ đếm theo email,
// ngưỡng rộng hơn quick capture vì client có thể gửi lại form nhiều bước
func (s *RateLimitService) CheckEnrich(ctx context.Context, email string) error {
	checks := []limitCheck{
		{s.key("rl:enrich1d", utility.HmacEmail(email, s.emailSecret)), windowDaily, s.enrichDaily},
	}
	return s.runChecks(ctx, checks)
}

func (s *RateLimitService) runChecks(ctx context.Context, checks []limitCheck) error {
	for _, ck := range checks {
		count, err := s.store.IncrementWithTTL(ctx, ck.key, ck.ttl)
		if err != nil {
			logger.GetErrorLogger().WithError(err).WithField("key", ck.key).Error("Rate limit store unavailable")
			return common.ErrStoreDown
		}
		if count > ck.threshold {
			return common.ErrRateLimited
		}
	}
	return nil
}

// key tạo Redis key có namespace: <ns>:<kind>:<id>
func (s *RateLimitService) key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.namespace, kind, id)
}
