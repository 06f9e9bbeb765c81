package vehsvc

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Friend-Renter/fr-marketing-api/config"
	"github.com/Friend-Renter/fr-marketing-api/internal/logger"
)

// Trạng thái cache trả về trong header x-cache
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheFallback = "fallback"
)

// TTL cache theo loại dữ liệu — taxonomy xe gần như tĩnh
const (
	ttlYears = 30 * 24 * time.Hour
	ttlLists = 7 * 24 * time.Hour
)

// CacheStore trừu tượng hóa cache JSON — Redis trong production,
// map trong test
type CacheStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, val string, ttl time.Duration)
}

// RedisCacheStore là CacheStore chạy trên Redis. Cache là best-effort:
// mọi lỗi Redis đều nuốt (log debug) — miss chứ không phải failure.
type RedisCacheStore struct {
	client *redis.Client
}

// NewRedisCacheStore khởi tạo RedisCacheStore
func NewRedisCacheStore(client *redis.Client) *RedisCacheStore {
	return &RedisCacheStore{client: client}
}

func (s *RedisCacheStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.GetAppLogger().WithError(err).WithField("key", key).Debug("Cache read lỗi, coi như miss")
		}
		return "", false
	}
	return val, true
}

func (s *RedisCacheStore) Set(ctx context.Context, key, val string, ttl time.Duration) {
	if err := s.client.Set(ctx, key, val, ttl).Err(); err != nil {
		logger.GetAppLogger().WithError(err).WithField("key", key).Debug("Cache write lỗi, bỏ qua")
	}
}

// CatalogService là read-through cache trước CatalogSource.
// Upstream lỗi → fallback payload được định nghĩa tường minh, status 200,
// cache-status "fallback" — không bao giờ là 5xx cho người duyệt xe.
type CatalogService struct {
	source    CatalogSource
	cache     CacheStore
	namespace string
	now       func() time.Time
}

// NewCatalogService khởi tạo CatalogService
func NewCatalogService(source CatalogSource, cache CacheStore, cfg *config.Configuration) *CatalogService {
	return &CatalogService{
		source:    source,
		cache:     cache,
		namespace: cfg.Redis_Namespace,
		now:       time.Now,
	}
}

// Years trả về khoảng model year cùng trạng thái cache.
// Fallback: {1980, năm hiện tại}.
func (s *CatalogService) Years(ctx context.Context) (YearRange, string) {
	key := s.namespace + ":veh:years"

	var cached YearRange
	if ok := s.getJSON(ctx, key, &cached); ok {
		return cached, CacheHit
	}

	years, err := s.source.Years(ctx)
	if err != nil {
		logger.GetAppLogger().WithError(err).Warn("CarQuery years lỗi, dùng fallback")
		return YearRange{Min: 1980, Max: s.now().Year()}, CacheFallback
	}
	s.setJSON(ctx, key, years, ttlYears)
	return years, CacheMiss
}

// Makes trả về danh sách hãng theo năm. Fallback: danh sách rỗng.
func (s *CatalogService) Makes(ctx context.Context, year string) ([]string, string) {
	key := s.namespace + ":veh:makes:" + year

	var cached []string
	if ok := s.getJSON(ctx, key, &cached); ok {
		return cached, CacheHit
	}

	makes, err := s.source.Makes(ctx, year)
	if err != nil {
		logger.GetAppLogger().WithError(err).Warn("CarQuery makes lỗi, dùng fallback")
		return []string{}, CacheFallback
	}
	s.setJSON(ctx, key, makes, ttlLists)
	return makes, CacheMiss
}

// Models trả về danh sách model theo năm + hãng. Fallback: danh sách rỗng.
func (s *CatalogService) Models(ctx context.Context, year, makeName string) ([]string, string) {
	key := s.namespace + ":veh:models:" + year + ":" + strings.ToLower(makeName)

	var cached []string
	if ok := s.getJSON(ctx, key, &cached); ok {
		return cached, CacheHit
	}

	models, err := s.source.Models(ctx, year, makeName)
	if err != nil {
		logger.GetAppLogger().WithError(err).Warn("CarQuery models lỗi, dùng fallback")
		return []string{}, CacheFallback
	}
	s.setJSON(ctx, key, models, ttlLists)
	return models, CacheMiss
}

// Trims trả về danh sách trim. Fallback: danh sách rỗng.
func (s *CatalogService) Trims(ctx context.Context, year, makeName, model string) ([]string, string) {
	key := s.namespace + ":veh:trims:" + year + ":" + strings.ToLower(makeName) + ":" + strings.ToLower(model)

	var cached []string
	if ok := s.getJSON(ctx, key, &cached); ok {
		return cached, CacheHit
	}

	trims, err := s.source.Trims(ctx, year, makeName, model)
	if err != nil {
		logger.GetAppLogger().WithError(err).Warn("CarQuery trims lỗi, dùng fallback")
		return []string{}, CacheFallback
	}
	s.setJSON(ctx, key, trims, ttlLists)
	return trims, CacheMiss
}

func (s *CatalogService) getJSON(ctx context.Context, key string, out interface{}) bool {
	val, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		// Entry hỏng — coi như miss để fetch lại
		return false
	}
	return true
}

func (s *CatalogService) setJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) {
	b, err := json.Marshal(val)
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, string(b), ttl)
}
