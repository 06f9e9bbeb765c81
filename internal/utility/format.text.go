// Package utility - Chuẩn hóa text cho make/model/trim xe.
package utility

import (
	"sort"
	"strings"
)

// TitleCaseSmart chuẩn hóa tên xe về Title Case nhưng giữ nguyên acronym.
// Token toàn chữ hoa/số/gạch ngang dài <= 5 ký tự được giữ nguyên ("BMW", "GMC", "VW").
// Phần còn lại tách theo whitespace / - + (giữ nguyên separator) rồi viết hoa chữ đầu từng chunk.
func TitleCaseSmart(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return raw
	}

	if len(raw) <= 5 && isUpperAlnum(raw) {
		return raw
	}

	// Token đơn rất ngắn coi là acronym kể cả khi người dùng gõ thường ("bmw" -> "BMW", "vw" -> "VW")
	if len(raw) <= 3 && isAlnumToken(raw) {
		return strings.ToUpper(raw)
	}

	var b strings.Builder
	b.Grow(len(raw))
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || isSeparator(raw[i]) {
			if start < i {
				b.WriteString(capitalizeChunk(raw[start:i]))
			}
			if i < len(raw) {
				b.WriteByte(raw[i])
			}
			start = i + 1
		}
	}
	return b.String()
}

// isUpperAlnum kiểm tra chuỗi chỉ gồm A-Z, 0-9 và gạch ngang
func isUpperAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return false
	}
	return true
}

// isAlnumToken kiểm tra chuỗi chỉ gồm chữ cái và số (không separator)
func isAlnumToken(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

func isSeparator(c byte) bool {
	return c == ' ' || c == '\t' || c == '/' || c == '-' || c == '+'
}

// capitalizeChunk viết hoa ký tự đầu, hạ thường phần còn lại
func capitalizeChunk(chunk string) string {
	if chunk == "" {
		return chunk
	}
	return strings.ToUpper(chunk[:1]) + strings.ToLower(chunk[1:])
}

// UniqSorted loại trùng, bỏ chuỗi rỗng và sort theo alphabet.
// Dùng cho danh sách makes/models/trims từ CarQuery.
func UniqSorted(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
