package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Các secret bắt buộc (Mongo, Redis, reCAPTCHA) được đánh dấu required —
// thiếu là ConfigurationError ngay lúc khởi động, không chờ đến request.
type Configuration struct {
	Address string `env:"ADDRESS" envDefault:":8080"` // Địa chỉ server

	// Datastores
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`    // URL kết nối MongoDB
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"fr_marketing"` // Tên database marketing
	Redis_URL             string `env:"REDIS_URL,required"`                 // redis:// hoặc rediss://
	Redis_Namespace       string `env:"REDIS_NAMESPACE" envDefault:"fr:dev"` // Prefix cho toàn bộ key Redis

	// Abuse controls
	Recaptcha_Secret   string `env:"RECAPTCHA_SECRET,required"` // Secret server-side cho reCAPTCHA siteverify
	RateLimit_Secret   string `env:"RATE_LIMIT_SECRET"`         // Secret HMAC cho key email + ipHash (fallback: Recaptcha_Secret)
	RateLimit_IPBurst  int    `env:"RATE_LIMIT_IP_BURST" envDefault:"5"`    // Ngưỡng IP trong cửa sổ 10 phút
	RateLimit_IPDaily  int    `env:"RATE_LIMIT_IP_DAILY" envDefault:"50"`   // Ngưỡng IP trong 1 ngày
	RateLimit_EmailDaily int  `env:"RATE_LIMIT_EMAIL_DAILY" envDefault:"3"` // Ngưỡng email trong 1 ngày (quick-capture)
	RateLimit_EnrichDaily int `env:"RATE_LIMIT_ENRICH_DAILY" envDefault:"10"` // Ngưỡng email trong 1 ngày (enrichment, nới hơn)
	Idempotency_TTL    int    `env:"IDEMPOTENCY_TTL" envDefault:"300"`      // TTL (giây) cửa sổ chống trùng lặp

	// Vehicle catalog
	Vehicles_UserAgent string `env:"VEHICLES_USER_AGENT" envDefault:"FriendRenter/1.0 (+contact: team@friendrenter.com)"` // UA gửi lên CarQuery
	Vehicles_RateMax   int    `env:"VEHICLES_RATE_MAX" envDefault:"60"` // Ngưỡng IP 1 phút cho catalog

	// CORS
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"` // Origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`       // Cho phép gửi credentials
}

// EmailHashSecret trả về secret dùng cho HMAC email key.
// Nếu RATE_LIMIT_SECRET không được cấu hình thì dùng lại RECAPTCHA_SECRET.
func (c *Configuration) EmailHashSecret() string {
	if c.RateLimit_Secret != "" {
		return c.RateLimit_Secret
	}
	return c.Recaptcha_Secret
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	environment := os.Getenv("GO_ENV")
	if environment == "" {
		environment = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env bằng cách đi lên từ thư mục hiện tại
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", environment))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env (nếu có) rồi parse từ environment.
// Biến môi trường đã set sẵn luôn được ưu tiên hơn file env.
func NewConfig() *Configuration {
	envPath := getEnvPath()
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			// File env là optional khi chạy container — env vars đã được inject sẵn
			fmt.Printf("Không load được file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
