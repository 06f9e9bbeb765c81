package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleCaseSmart(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"honda civic", "Honda Civic"},
		{"toyota", "Toyota"},
		{"bmw", "BMW"}, // token ngắn coi là acronym
		{"vw", "VW"},
		{"BMW", "BMW"}, // acronym sẵn có giữ nguyên
		{"GMC", "GMC"},
		{"F-150", "F-150"}, // hoa + số + gạch ngang giữ nguyên
		{"cr-v", "Cr-V"},   // có separator thì theo chunk
		{"grand caravan se", "Grand Caravan Se"},
		{"MERCEDES-BENZ SPRINTER", "Mercedes-Benz Sprinter"},
		{"  civic  ", "Civic"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TitleCaseSmart(tc.in), "input: %q", tc.in)
	}
}

func TestUniqSorted(t *testing.T) {
	got := UniqSorted([]string{"Toyota", "", "Honda", "Toyota", "BMW"})
	assert.Equal(t, []string{"BMW", "Honda", "Toyota"}, got)

	assert.Empty(t, UniqSorted(nil))
	assert.Empty(t, UniqSorted([]string{"", ""}))
}

func TestNormalizeStr(t *testing.T) {
	assert.Equal(t, "abc", NormalizeStr("  abc  ", 10))
	assert.Equal(t, "abcde", NormalizeStr("abcdefgh", 5))
	assert.Equal(t, "abcdefgh", NormalizeStr("abcdefgh", 0), "max 0 nghĩa là không giới hạn")
	// Cắt theo rune, không được cắt giữa ký tự UTF-8
	assert.Equal(t, "Hà", NormalizeStr("Hà Nội", 2))
}
