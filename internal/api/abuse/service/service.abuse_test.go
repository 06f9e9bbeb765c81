package abusesvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Friend-Renter/fr-marketing-api/config"
	"github.com/Friend-Renter/fr-marketing-api/internal/common"
)

// fakeCounterStore là CounterStore trong bộ nhớ dùng cho test
type fakeCounterStore struct {
	counts map[string]int64
	claims map[string]bool
	err    error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		counts: make(map[string]int64),
		claims: make(map[string]bool),
	}
}

func (f *fakeCounterStore) IncrementWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounterStore) ClaimOnce(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.claims[key] {
		return false, nil
	}
	f.claims[key] = true
	return true, nil
}

func testConfig() *config.Configuration {
	return &config.Configuration{
		Redis_Namespace:       "fr:test",
		Recaptcha_Secret:      "test-secret",
		RateLimit_IPBurst:     5,
		RateLimit_IPDaily:     50,
		RateLimit_EmailDaily:  3,
		RateLimit_EnrichDaily: 10,
		Idempotency_TTL:       300,
		Vehicles_RateMax:      60,
	}
}

func TestCheckCapture_EmailThreshold(t *testing.T) {
	store := newFakeCounterStore()
	svc := NewRateLimitService(store, testConfig())
	ctx := context.Background()

	// Email giống nhau, IP khác nhau — ngưỡng email/ngày là 3
	ips := []string{"1.1.1.1", "2.2.2.2", "3.3.3.3", "4.4.4.4"}
	for i := 0; i < 3; i++ {
		err := svc.CheckCapture(ctx, ips[i], "user@example.com")
		assert.NoError(t, err, "3 lần đầu phải được chấp nhận")
	}
	err := svc.CheckCapture(ctx, ips[3], "user@example.com")
	assert.ErrorIs(t, err, common.ErrRateLimited, "lần thứ 4 phải bị chặn 429")
}

func TestCheckCapture_IPBurstThreshold(t *testing.T) {
	store := newFakeCounterStore()
	svc := NewRateLimitService(store, testConfig())
	ctx := context.Background()

	// IP giống nhau, email khác nhau — ngưỡng IP/10 phút là 5
	emails := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com", "f@x.com"}
	for i := 0; i < 5; i++ {
		err := svc.CheckCapture(ctx, "9.9.9.9", emails[i])
		assert.NoError(t, err, "5 lần đầu phải được chấp nhận")
	}
	err := svc.CheckCapture(ctx, "9.9.9.9", emails[5])
	assert.ErrorIs(t, err, common.ErrRateLimited, "lần thứ 6 phải bị chặn 429")
}

func TestCheckCapture_EmailCaseInsensitive(t *testing.T) {
	store := newFakeCounterStore()
	svc := NewRateLimitService(store, testConfig())
	ctx := context.Background()

	// Email khác hoa thường phải đếm chung một counter
	require.NoError(t, svc.CheckCapture(ctx, "1.1.1.1", "User@Example.com"))
	require.NoError(t, svc.CheckCapture(ctx, "2.2.2.2", "user@example.com"))
	require.NoError(t, svc.CheckCapture(ctx, "3.3.3.3", "USER@EXAMPLE.COM"))
	err := svc.CheckCapture(ctx, "4.4.4.4", "user@example.com")
	assert.ErrorIs(t, err, common.ErrRateLimited)
}

func TestCheckCapture_StoreDownFailClosed(t *testing.T) {
	store := newFakeCounterStore()
	store.err = errors.New("connection refused")
	svc := NewRateLimitService(store, testConfig())

	err := svc.CheckCapture(context.Background(), "1.1.1.1", "user@example.com")
	assert.ErrorIs(t, err, common.ErrStoreDown, "store lỗi phải fail-closed với ingestion")
}

func TestCheckEnrich_Threshold(t *testing.T) {
	store := newFakeCounterStore()
	svc := NewRateLimitService(store, testConfig())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		assert.NoError(t, svc.CheckEnrich(ctx, "user@example.com"))
	}
	err := svc.CheckEnrich(ctx, "user@example.com")
	assert.ErrorIs(t, err, common.ErrRateLimited, "lần thứ 11 phải bị chặn")
}

func TestIdempotency_ClaimOnce(t *testing.T) {
	store := newFakeCounterStore()
	svc := NewIdempotencyService(store, testConfig())
	ctx := context.Background()

	ok, err := svc.Claim(ctx, "capture", "", "host", "user@example.com", "Lincoln")
	require.NoError(t, err)
	assert.True(t, ok, "lần đầu phải claim được")

	ok, err = svc.Claim(ctx, "capture", "", "host", "user@example.com", "Lincoln")
	require.NoError(t, err)
	assert.False(t, ok, "payload y hệt phải bị coi là duplicate")

	// Khác kind thì không va key
	ok, err = svc.Claim(ctx, "enrich", "", "host", "user@example.com", "Lincoln")
	require.NoError(t, err)
	assert.True(t, ok, "kind khác nhau phải có key riêng")
}

func TestIdempotency_ExplicitKeyOverridesDigest(t *testing.T) {
	store := newFakeCounterStore()
	svc := NewIdempotencyService(store, testConfig())
	ctx := context.Background()

	// Payload khác nhau nhưng cùng client key → vẫn là duplicate
	ok, err := svc.Claim(ctx, "capture", "client-key-1", "host", "a@b.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Claim(ctx, "capture", "client-key-1", "renter", "x@y.com")
	require.NoError(t, err)
	assert.False(t, ok, "client key trùng phải chặn dù payload khác")
}

func TestIdempotency_StoreDownFailClosed(t *testing.T) {
	store := newFakeCounterStore()
	store.err = errors.New("connection refused")
	svc := NewIdempotencyService(store, testConfig())

	_, err := svc.Claim(context.Background(), "capture", "", "host", "a@b.com")
	assert.ErrorIs(t, err, common.ErrStoreDown)
}

func TestCatalogLimiter_FailOpen(t *testing.T) {
	store := newFakeCounterStore()
	store.err = errors.New("connection refused")
	lim := NewCatalogLimiter(store, testConfig())

	// Redis down — fallback in-memory vẫn phải cho qua request đầu
	assert.True(t, lim.Allow(context.Background(), "1.1.1.1"), "catalog phải fail-open khi store lỗi")
}

func TestCatalogLimiter_Threshold(t *testing.T) {
	store := newFakeCounterStore()
	lim := NewCatalogLimiter(store, testConfig())
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		assert.True(t, lim.Allow(ctx, "1.1.1.1"))
	}
	assert.False(t, lim.Allow(ctx, "1.1.1.1"), "request thứ 61 trong 1 phút phải bị chặn")
}

func TestCaptcha_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "test-secret", r.Form.Get("secret"))
		assert.Equal(t, "valid-token", r.Form.Get("response"))
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	svc := NewCaptchaService("test-secret", srv.URL)
	assert.NoError(t, svc.Verify(context.Background(), "valid-token", "1.1.1.1"))
}

func TestCaptcha_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error-codes": []string{"invalid-input-response"}})
	}))
	defer srv.Close()

	svc := NewCaptchaService("test-secret", srv.URL)
	err := svc.Verify(context.Background(), "bad-token", "")
	assert.ErrorIs(t, err, common.ErrCaptchaFailed)
}

func TestCaptcha_MissingSecret(t *testing.T) {
	svc := NewCaptchaService("", "")
	err := svc.Verify(context.Background(), "any-token", "")
	assert.ErrorIs(t, err, common.ErrMisconfigured, "thiếu secret là lỗi cấu hình, không phải lỗi captcha")
}

func TestCaptcha_EmptyToken(t *testing.T) {
	svc := NewCaptchaService("test-secret", "")
	err := svc.Verify(context.Background(), "", "")
	assert.ErrorIs(t, err, common.ErrCaptchaFailed)
}

func TestCaptcha_NetworkErrorFailClosed(t *testing.T) {
	// Server đóng ngay — mọi request đều lỗi network
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc := NewCaptchaService("test-secret", srv.URL)
	err := svc.Verify(context.Background(), "token", "")
	assert.ErrorIs(t, err, common.ErrCaptchaFailed, "network lỗi phải fail-closed")
}
