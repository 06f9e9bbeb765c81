// Package utility - HMAC/digest cho privacy: không bao giờ lưu hay ghép key bằng raw IP / raw email.
package utility

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashIP băm IP bằng HMAC-SHA256 với secret.
// Raw IP không bao giờ được persist — chỉ hash này được ghi vào meta.ipHash.
func HashIP(ip, secret string) string {
	if ip == "" {
		return ""
	}
	salt := secret
	if salt == "" {
		salt = "ip_salt_default"
	}
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}

// HmacEmail băm email (lowercase) bằng HMAC-SHA256 — dùng làm thành phần key rate-limit,
// tránh đưa email thô vào key Redis.
func HmacEmail(email, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.ToLower(email)))
	return hex.EncodeToString(mac.Sum(nil))
}

// DigestFields tạo SHA-256 digest từ các field định danh, dùng để derive idempotency key
// khi client không gửi X-Idempotency-Key. Các field nối bằng "|" theo thứ tự cố định.
func DigestFields(fields ...string) string {
	h := sha256.New()
	for i, f := range fields {
		if i > 0 {
			h.Write([]byte{'|'})
		}
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}
