package abusesvc

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore trừu tượng hóa các thao tác đếm / claim key dùng cho
// rate limiting và idempotency. Redis là implementation chính;
// interface cho phép test với store giả trong bộ nhớ.
type CounterStore interface {
	// IncrementWithTTL tăng counter tại key và đảm bảo key có TTL.
	// TTL chỉ được set lần đầu (cửa sổ cố định, không trượt).
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// ClaimOnce set key nếu chưa tồn tại (SETNX). Trả về true nếu claim
	// thành công, false nếu key đã có người giữ.
	ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisCounterStore là CounterStore chạy trên Redis
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore khởi tạo RedisCounterStore
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// IncrementWithTTL dùng pipeline INCR + EXPIRE NX để tăng counter và
// gắn TTL nguyên tử trong một round trip
func (s *RedisCounterStore) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// ClaimOnce dùng SET NX với TTL
func (s *RedisCounterStore) ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, "1", ttl).Result()
}
