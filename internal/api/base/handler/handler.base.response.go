package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"github.com/Friend-Renter/fr-marketing-api/internal/common"
	"github.com/Friend-Renter/fr-marketing-api/internal/logger"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
// Helper này đảm bảo tất cả JSON responses đều có charset=utf-8 để hỗ trợ UTF-8 encoding đúng cách
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandler bọc handler với recover để bắt panic và xử lý lỗi an toàn.
// Đảm bảo server luôn trả về response cho client, kể cả khi có panic —
// exception không bao giờ leak internals ra ngoài (chỉ 500 generic).
func SafeHandler(c fiber.Ctx, handler func() error) error {
	defer func() {
		if r := recover(); r != nil {
			debug.PrintStack()
			logger.WithRequest(c).WithField("panic", fmt.Sprintf("%v", r)).Error("Panic recovered in handler")

			HandleError(c, common.NewError(
				common.ErrCodeInternalServer,
				common.MsgInternalError,
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}

// HandleError xử lý và chuẩn hóa error response trả về cho client.
// Custom error giữ nguyên status + code; lỗi lạ bị ép về 500 generic,
// message gốc chỉ ghi log, không trả cho client.
func HandleError(c fiber.Ctx, err error) {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		JSONResponse(c, customErr.StatusCode, fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"details": customErr.Details,
			"status":  "error",
		})
		return
	}

	logger.WithRequest(c).WithError(err).Error("Unhandled error in handler")
	JSONResponse(c, common.StatusInternalServerError, fiber.Map{
		"code":    common.ErrCodeInternalServer.Code,
		"message": common.MsgInternalError,
		"status":  "error",
	})
}

// HandleSuccess trả về response thành công theo format thống nhất
func HandleSuccess(c fiber.Ctx, statusCode int, data interface{}) error {
	return JSONResponse(c, statusCode, fiber.Map{
		"code":    statusCode,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}
