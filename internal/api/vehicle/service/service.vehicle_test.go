package vehsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Friend-Renter/fr-marketing-api/config"
)

// fakeSource là CatalogSource trong bộ nhớ, đếm số lần gọi upstream
type fakeSource struct {
	years YearRange
	lists []string
	err   error
	calls int
}

func (f *fakeSource) Years(_ context.Context) (YearRange, error) {
	f.calls++
	return f.years, f.err
}

func (f *fakeSource) Makes(_ context.Context, _ string) ([]string, error) {
	f.calls++
	return f.lists, f.err
}

func (f *fakeSource) Models(_ context.Context, _, _ string) ([]string, error) {
	f.calls++
	return f.lists, f.err
}

func (f *fakeSource) Trims(_ context.Context, _, _, _ string) ([]string, error) {
	f.calls++
	return f.lists, f.err
}

// mapCache là CacheStore trên map, không TTL
type mapCache struct {
	data map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]string)}
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool) {
	val, ok := c.data[key]
	return val, ok
}

func (c *mapCache) Set(_ context.Context, key, val string, _ time.Duration) {
	c.data[key] = val
}

func newCatalogFixture(source *fakeSource) (*CatalogService, *mapCache) {
	cache := newMapCache()
	cfg := &config.Configuration{Redis_Namespace: "fr:test"}
	svc := NewCatalogService(source, cache, cfg)
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	return svc, cache
}

func TestCatalogYears_MissThenHit(t *testing.T) {
	source := &fakeSource{years: YearRange{Min: 1990, Max: 2026}}
	svc, _ := newCatalogFixture(source)
	ctx := context.Background()

	years, status := svc.Years(ctx)
	assert.Equal(t, CacheMiss, status)
	assert.Equal(t, YearRange{Min: 1990, Max: 2026}, years)

	years, status = svc.Years(ctx)
	assert.Equal(t, CacheHit, status, "lần hai phải phục vụ từ cache")
	assert.Equal(t, YearRange{Min: 1990, Max: 2026}, years)
	assert.Equal(t, 1, source.calls, "hit không được gọi upstream")
}

func TestCatalogYears_Fallback(t *testing.T) {
	source := &fakeSource{err: errors.New("upstream timeout")}
	svc, cache := newCatalogFixture(source)

	years, status := svc.Years(context.Background())
	assert.Equal(t, CacheFallback, status)
	assert.Equal(t, YearRange{Min: 1980, Max: 2026}, years, "fallback là {1980, năm hiện tại}")
	assert.Empty(t, cache.data, "fallback không được ghi vào cache")
}

func TestCatalogMakes_Fallback(t *testing.T) {
	source := &fakeSource{err: errors.New("boom")}
	svc, _ := newCatalogFixture(source)

	makes, status := svc.Makes(context.Background(), "2022")
	assert.Equal(t, CacheFallback, status)
	assert.NotNil(t, makes, "fallback là danh sách rỗng, không phải nil")
	assert.Empty(t, makes)
}

func TestCatalogModels_CacheKeyLowercasesMake(t *testing.T) {
	source := &fakeSource{lists: []string{"Camry", "Corolla"}}
	svc, cache := newCatalogFixture(source)
	ctx := context.Background()

	_, status := svc.Models(ctx, "2022", "Toyota")
	require.Equal(t, CacheMiss, status)
	assert.Contains(t, cache.data, "fr:test:veh:models:2022:toyota", "make trong key phải lowercase")

	// Cùng make khác hoa thường phải hit cùng entry
	_, status = svc.Models(ctx, "2022", "TOYOTA")
	assert.Equal(t, CacheHit, status)
	assert.Equal(t, 1, source.calls)
}

func TestCatalogTrims_MissThenHit(t *testing.T) {
	source := &fakeSource{lists: []string{"LE", "XLE"}}
	svc, cache := newCatalogFixture(source)
	ctx := context.Background()

	trims, status := svc.Trims(ctx, "2022", "Toyota", "Camry")
	require.Equal(t, CacheMiss, status)
	assert.Equal(t, []string{"LE", "XLE"}, trims)
	assert.Contains(t, cache.data, "fr:test:veh:trims:2022:toyota:camry")

	_, status = svc.Trims(ctx, "2022", "toyota", "CAMRY")
	assert.Equal(t, CacheHit, status)
}

func TestCatalog_CorruptCacheEntryIsMiss(t *testing.T) {
	source := &fakeSource{lists: []string{"Civic"}}
	svc, cache := newCatalogFixture(source)
	cache.data["fr:test:veh:makes:2022"] = "{not valid json"

	makes, status := svc.Makes(context.Background(), "2022")
	assert.Equal(t, CacheMiss, status, "entry hỏng phải được fetch lại")
	assert.Equal(t, []string{"Civic"}, makes)
	assert.Equal(t, 1, source.calls)
}

func TestStripJSONP(t *testing.T) {
	plain := []byte(`{"Years":{"min_year":"1941"}}`)
	assert.Equal(t, plain, stripJSONP(plain), "JSON thuần giữ nguyên")

	wrapped := []byte(`?({"Years":{"min_year":"1941"}});`)
	assert.Equal(t, plain, stripJSONP(wrapped), "vỏ JSONP phải bị cắt")

	noJSON := []byte(`callback();`)
	assert.Equal(t, noJSON, stripJSONP(noJSON), "không có object thì trả nguyên body")
}

func TestCarQueryYears_ClampsToCurrentYear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getYears", r.URL.Query().Get("cmd"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		fmt.Fprint(w, `?({"Years":{"min_year":"1941","max_year":"2099"}});`)
	}))
	defer srv.Close()

	client := NewCarQueryClient(srv.URL, "fr-test")
	client.now = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }

	years, err := client.Years(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1941, years.Min)
	assert.Equal(t, 2026, years.Max, "max phải bị kẹp về năm hiện tại")
}

func TestCarQueryYears_MinFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Years":{"min_year":"","max_year":"2025"}}`)
	}))
	defer srv.Close()

	client := NewCarQueryClient(srv.URL, "fr-test")
	client.now = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }

	years, err := client.Years(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1980, years.Min, "min không parse được thì fallback 1980")
	assert.Equal(t, 2025, years.Max)
}

func TestCarQueryMakes_NormalizesAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getMakes", r.URL.Query().Get("cmd"))
		assert.Equal(t, "1", r.URL.Query().Get("sold_in_us"))
		assert.Equal(t, "fr-test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"Makes":[
			{"make_display":"toyota","make_name":"toyota"},
			{"make_display":"bmw","make_name":"bmw"},
			{"make_display":"","make_name":"honda"},
			{"make_display":"toyota","make_name":"toyota"}
		]}`)
	}))
	defer srv.Close()

	client := NewCarQueryClient(srv.URL, "fr-test")
	makes, err := client.Makes(context.Background(), "2022")
	require.NoError(t, err)
	assert.Equal(t, []string{"BMW", "Honda", "Toyota"}, makes, "uniq + sort + chuẩn hóa tên")
}

func TestCarQueryTrims_PrefersModelTrim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("full_results"))
		fmt.Fprint(w, `{"Trims":[
			{"model_trim":"le","model_name":"camry"},
			{"model_trim":"","model_name":"camry"}
		]}`)
	}))
	defer srv.Close()

	client := NewCarQueryClient(srv.URL, "fr-test")
	trims, err := client.Trims(context.Background(), "2022", "Toyota", "Camry")
	require.NoError(t, err)
	assert.Equal(t, []string{"Camry", "LE"}, trims, "trim rỗng thì rơi về model_name")
}

func TestCarQuery_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewCarQueryClient(srv.URL, "fr-test")
	_, err := client.Makes(context.Background(), "2022")
	assert.Error(t, err)
}
