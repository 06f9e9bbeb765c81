package main

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"

	abusesvc "github.com/Friend-Renter/fr-marketing-api/internal/api/abuse/service"
	basehdl "github.com/Friend-Renter/fr-marketing-api/internal/api/base/handler"
	basesvc "github.com/Friend-Renter/fr-marketing-api/internal/api/base/service"
	leadhdl "github.com/Friend-Renter/fr-marketing-api/internal/api/lead/handler"
	leadmodels "github.com/Friend-Renter/fr-marketing-api/internal/api/lead/models"
	leadsvc "github.com/Friend-Renter/fr-marketing-api/internal/api/lead/service"
	"github.com/Friend-Renter/fr-marketing-api/internal/api/router"
	vehhdl "github.com/Friend-Renter/fr-marketing-api/internal/api/vehicle/handler"
	vehsvc "github.com/Friend-Renter/fr-marketing-api/internal/api/vehicle/service"
	"github.com/Friend-Renter/fr-marketing-api/internal/common"
	"github.com/Friend-Renter/fr-marketing-api/internal/global"
	"github.com/Friend-Renter/fr-marketing-api/internal/logger"
)

// InitFiberApp khởi tạo ứng dụng Fiber với middleware stack và routes
func InitFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "FriendRenter Marketing API",
		ServerHeader:  "FriendRenter Marketing API",
		StrictRouting: false,
		CaseSensitive: true,

		// Payload lead nhỏ — giới hạn chặt để chặn body rác
		BodyLimit:      64 * 1024,
		ReadBufferSize: 4096,

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		// Lỗi lọt ra ngoài handler được ép về format envelope thống nhất,
		// không leak internals
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := common.MsgInternalError
			errorCode := common.ErrCodeInternalServer.Code

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
				switch code {
				case fiber.StatusBadRequest:
					errorCode = common.ErrCodeValidationInput.Code
				case fiber.StatusNotFound:
					errorCode = common.ErrCodeDatabaseQuery.Code
				case fiber.StatusTooManyRequests:
					errorCode = common.ErrCodeAbuseRateLimit.Code
				}
			}

			logger.WithRequest(c).WithFields(map[string]interface{}{
				"code":      code,
				"errorCode": errorCode,
			}).Error("Request error")

			return c.Status(code).JSON(fiber.Map{
				"code":    errorCode,
				"message": message,
				"status":  "error",
			})
		},
	})

	// 1. Request ID — trace mỗi request qua log
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	// 2. CORS — đặt trước để xử lý preflight
	corsOrigins := global.ServerConfig.CORS_Origins
	var allowOrigins []string
	if corsOrigins == "*" {
		allowOrigins = []string{"*"}
	} else {
		allowOrigins = strings.Split(corsOrigins, ",")
		for i, origin := range allowOrigins {
			allowOrigins[i] = strings.TrimSpace(origin)
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Request-ID",
			"X-Idempotency-Key",
		},
		AllowCredentials: global.ServerConfig.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "x-cache"},
		MaxAge:           24 * 60 * 60,
	}))

	// 3. Security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	// 4. Recover — panic không được giết process
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"panic": e,
			}).Error("Panic recovered")
		},
	}))

	// Composition: dựng services từ connections toàn cục và nối routes
	setupAPI(app)

	return app
}

// setupAPI dựng toàn bộ dependency graph của API.
// Mọi service nhận connection qua constructor — không service nào
// tự mở connection.
func setupAPI(app *fiber.App) {
	cfg := global.ServerConfig

	// Abuse controls trên Redis
	counterStore := abusesvc.NewRedisCounterStore(global.Redis_Session)
	rateLimiter := abusesvc.NewRateLimitService(counterStore, cfg)
	idempotency := abusesvc.NewIdempotencyService(counterStore, cfg)
	captcha := abusesvc.NewCaptchaService(cfg.Recaptcha_Secret, "")

	// Lead pipeline
	leadsCol, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.Leads)
	if !ok {
		logger.GetErrorLogger().Fatal("Leads collection chưa được đăng ký trong registry")
	}
	leadStore := basesvc.NewBaseServiceMongo[leadmodels.Lead](leadsCol)
	leadService := leadsvc.NewLeadService(leadStore, rateLimiter, idempotency, captcha, leadsvc.NewScorer(), cfg)
	leadHandler := leadhdl.NewLeadHandler(leadService)

	// Vehicle catalog (proxy CarQuery, cache Redis, limiter fail-open)
	carquery := vehsvc.NewCarQueryClient("", cfg.Vehicles_UserAgent)
	catalog := vehsvc.NewCatalogService(carquery, vehsvc.NewRedisCacheStore(global.Redis_Session), cfg)
	catalogLimiter := abusesvc.NewCatalogLimiter(counterStore, cfg)
	vehicleHandler := vehhdl.NewVehicleHandler(catalog, catalogLimiter)

	systemHandler := basehdl.NewSystemHandler()

	router.NewRouter(app, leadHandler, vehicleHandler, systemHandler).SetupRoutes()
}
