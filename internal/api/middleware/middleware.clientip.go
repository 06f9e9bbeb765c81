package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

// ClientIP lấy IP thực của client phục vụ rate limiting.
// Ưu tiên giá trị đầu tiên trong X-Forwarded-For (client gốc khi đi qua
// reverse proxy / load balancer), fallback về remote IP của connection.
func ClientIP(c fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			first = xff[:idx]
		}
		first = strings.TrimSpace(first)
		if first != "" {
			return first
		}
	}
	return c.IP()
}

// UserAgent lấy User-Agent header, cắt bớt nếu quá dài để tránh lưu rác vào DB
func UserAgent(c fiber.Ctx) string {
	ua := c.Get("User-Agent")
	if len(ua) > 512 {
		ua = ua[:512]
	}
	return ua
}
