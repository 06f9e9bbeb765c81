package basehdl

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Friend-Renter/fr-marketing-api/internal/common"
	"github.com/Friend-Renter/fr-marketing-api/internal/database"
	"github.com/Friend-Renter/fr-marketing-api/internal/global"
	"github.com/Friend-Renter/fr-marketing-api/internal/utility"
)

// SystemHandler xử lý các endpoint hệ thống (health check, version)
type SystemHandler struct{}

// NewSystemHandler khởi tạo SystemHandler
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// HandleHealthCheck kiểm tra trạng thái hoạt động của server và các dependency.
// Mongo + Redis đều ok → 200 healthy; một trong hai down → 503 degraded.
// Endpoint này không yêu cầu auth và không bị rate limit.
func (h *SystemHandler) HandleHealthCheck(c fiber.Ctx) error {
	return SafeHandler(c, func() error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		mongoOK := false
		if global.MongoDB_Session != nil {
			mongoOK = global.MongoDB_Session.Ping(ctx, nil) == nil
		}
		redisOK := database.PingRedis(ctx, global.Redis_Session)

		status := "healthy"
		statusCode := common.StatusOK
		if !mongoOK || !redisOK {
			status = "degraded"
			statusCode = common.StatusServiceUnavailable
		}

		checkState := func(ok bool) string {
			if ok {
				return "up"
			}
			return "down"
		}

		return JSONResponse(c, statusCode, fiber.Map{
			"status":    status,
			"timestamp": utility.CurrentTimeInMilli(),
			"checks": fiber.Map{
				"mongodb": checkState(mongoOK),
				"redis":   checkState(redisOK),
			},
		})
	})
}
