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

// IdempotencyService chống trùng lặp submit trong cửa sổ ngắn.
// Key được dẫn xuất từ các trường định danh của payload (SHA-256),
// claim bằng SETNX với TTL. Claim thất bại nghĩa là payload y hệt
// vừa được xử lý — caller trả về "duplicate" mà không ghi gì thêm.
type IdempotencyService struct {
	store     CounterStore
	namespace string
	ttl       time.Duration
}

// NewIdempotencyService khởi tạo IdempotencyService từ cấu hình server
func NewIdempotencyService(store CounterStore, cfg *config.Configuration) *IdempotencyService {
	return &IdempotencyService{
		store:     store,
		namespace: cfg.Redis_Namespace,
		ttl:       time.Duration(cfg.Idempotency_TTL) * time.Second,
	}
}

// Claim thử giành quyền xử lý cho payload. Trả về true nếu đây là
// lần đầu thấy payload trong cửa sổ TTL, false nếu là bản lặp.
// kind phân biệt loại thao tác (capture / enrich) để key không va nhau.
// explicitKey là token từ header X-Idempotency-Key — có thì dùng thay
// cho digest dẫn xuất từ fields.
// Lỗi store là fail-closed: không nhận lead khi không xác minh được.
func (s *IdempotencyService) Claim(ctx context.Context, kind, explicitKey string, fields ...string) (bool, error) {
	digest := utility.DigestFields(fields...)
	if explicitKey != "" {
		// Hash lại để bound độ dài key, client có thể gửi token dài tùy ý
		digest = utility.DigestFields(explicitKey)
	}
	key := fmt.Sprintf("%s:idem:%s:%s", s.namespace, kind, digest)
	ok, err := s.store.ClaimOnce(ctx, key, s.ttl)
	if err != nil {
		logger.GetErrorLogger().WithError(err).WithField("kind", kind).Error("Idempotency store unavailable")
		return false, common.ErrStoreDown
	}
	return ok, nil
}
