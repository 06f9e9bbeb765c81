package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashIP(t *testing.T) {
	h := HashIP("1.2.3.4", "secret")
	assert.NotEmpty(t, h)
	assert.NotContains(t, h, "1.2.3.4", "hash không được chứa IP thô")
	assert.Equal(t, h, HashIP("1.2.3.4", "secret"), "cùng input phải cho cùng hash")
	assert.NotEqual(t, h, HashIP("1.2.3.4", "other-secret"), "secret khác phải cho hash khác")
	assert.NotEqual(t, h, HashIP("4.3.2.1", "secret"))

	assert.Empty(t, HashIP("", "secret"), "IP rỗng không hash")
	assert.NotEmpty(t, HashIP("1.2.3.4", ""), "secret rỗng vẫn hash được với salt mặc định")
}

func TestHmacEmail(t *testing.T) {
	h := HmacEmail("User@Example.com", "secret")
	assert.Equal(t, h, HmacEmail("user@example.com", "secret"), "email phải lowercase trước khi hash")
	assert.NotEqual(t, h, HmacEmail("other@example.com", "secret"))
	assert.NotContains(t, h, "@", "hash là hex, không chứa email thô")
}

func TestDigestFields(t *testing.T) {
	d := DigestFields("host", "a@b.com", "Lincoln")
	assert.Equal(t, d, DigestFields("host", "a@b.com", "Lincoln"))
	assert.NotEqual(t, d, DigestFields("renter", "a@b.com", "Lincoln"))
	assert.NotEqual(t, d, DigestFields("host", "a@b.com"), "số field khác phải cho digest khác")
	// Ranh giới field phải rõ ràng — nối khác cách không được trùng digest
	assert.NotEqual(t, DigestFields("ab", "c"), DigestFields("a", "bc"))
}
