package vehsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Friend-Renter/fr-marketing-api/internal/utility"
)

// DefaultCarQueryBase là endpoint gốc của CarQuery API
const DefaultCarQueryBase = "https://www.carqueryapi.com/api/0.3/"

// YearRange là khoảng model year khả dụng
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// CatalogSource là upstream cung cấp taxonomy xe — interface để
// cache service test được với source giả
type CatalogSource interface {
	Years(ctx context.Context) (YearRange, error)
	Makes(ctx context.Context, year string) ([]string, error)
	Models(ctx context.Context, year, makeName string) ([]string, error)
	Trims(ctx context.Context, year, makeName, model string) ([]string, error)
}

// CarQueryClient gọi CarQuery API. Response có thể là JSON hoặc JSONP
// tùy params/proxy — parse phải strip được vỏ JSONP.
type CarQueryClient struct {
	base      string
	userAgent string
	client    *http.Client
	now       func() time.Time
}

// NewCarQueryClient khởi tạo client. base rỗng → endpoint mặc định.
func NewCarQueryClient(base, userAgent string) *CarQueryClient {
	if base == "" {
		base = DefaultCarQueryBase
	}
	return &CarQueryClient{
		base:      base,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
		now:       time.Now,
	}
}

// fetch gọi CarQuery với cmd + params, strip JSONP và decode vào out
func (c *CarQueryClient) fetch(ctx context.Context, params map[string]string, out interface{}) error {
	u, err := url.Parse(c.base)
	if err != nil {
		return err
	}
	q := u.Query()
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	// fmt=json không phải chỗ nào cũng có tài liệu nhưng giúp ép JSON ở một số setup
	q.Set("fmt", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("carquery %s trả về status %d", params["cmd"], resp.StatusCode)
	}
	return json.Unmarshal(stripJSONP(body), out)
}

// stripJSONP cắt vỏ JSONP dạng carquery({...}); nếu có, giữ nguyên JSON thuần
func stripJSONP(body []byte) []byte {
	s := string(body)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return []byte(s[start : end+1])
	}
	return body
}

// Years trả về khoảng model year, max không vượt quá năm hiện tại
func (c *CarQueryClient) Years(ctx context.Context) (YearRange, error) {
	var raw struct {
		Years struct {
			MinYear string `json:"min_year"`
			MaxYear string `json:"max_year"`
		} `json:"Years"`
	}
	if err := c.fetch(ctx, map[string]string{"cmd": "getYears"}, &raw); err != nil {
		return YearRange{}, err
	}

	now := c.now().Year()
	min := parseYearOr(raw.Years.MinYear, 1980)
	max := parseYearOr(raw.Years.MaxYear, now)
	if max > now {
		max = now
	}
	return YearRange{Min: min, Max: max}, nil
}

// Makes trả về danh sách hãng xe (sold_in_us), uniq + sort + title case
func (c *CarQueryClient) Makes(ctx context.Context, year string) ([]string, error) {
	var raw struct {
		Makes []struct {
			MakeDisplay string `json:"make_display"`
			MakeName    string `json:"make_name"`
		} `json:"Makes"`
	}
	err := c.fetch(ctx, map[string]string{"cmd": "getMakes", "year": year, "sold_in_us": "1"}, &raw)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(raw.Makes))
	for _, m := range raw.Makes {
		name := m.MakeDisplay
		if name == "" {
			name = m.MakeName
		}
		names = append(names, utility.TitleCaseSmart(name))
	}
	return utility.UniqSorted(names), nil
}

// Models trả về danh sách model theo năm + hãng
func (c *CarQueryClient) Models(ctx context.Context, year, makeName string) ([]string, error) {
	var raw struct {
		Models []struct {
			ModelName string `json:"model_name"`
		} `json:"Models"`
	}
	err := c.fetch(ctx, map[string]string{"cmd": "getModels", "year": year, "make": makeName, "sold_in_us": "1"}, &raw)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(raw.Models))
	for _, m := range raw.Models {
		names = append(names, utility.TitleCaseSmart(m.ModelName))
	}
	return utility.UniqSorted(names), nil
}

// Trims trả về danh sách trim, ưu tiên model_trim ngắn gọn
func (c *CarQueryClient) Trims(ctx context.Context, year, makeName, model string) ([]string, error) {
	var raw struct {
		Trims []struct {
			ModelTrim string `json:"model_trim"`
			ModelName string `json:"model_name"`
		} `json:"Trims"`
	}
	err := c.fetch(ctx, map[string]string{
		"cmd": "getTrims", "year": year, "make": makeName, "model": model,
		"sold_in_us": "1", "full_results": "0",
	}, &raw)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(raw.Trims))
	for _, t := range raw.Trims {
		name := t.ModelTrim
		if name == "" {
			name = t.ModelName
		}
		names = append(names, utility.TitleCaseSmart(name))
	}
	return utility.UniqSorted(names), nil
}

func parseYearOr(s string, fallback int) int {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y <= 0 {
		return fallback
	}
	return y
}
