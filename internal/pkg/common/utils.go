package common

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// Truncate 依字元（rune）截斷字串，超出時補上省略號
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

var (
	durationPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(hours?|hrs?|minutes?|mins?)\b`)
	leadingNumber   = regexp.MustCompile(`\d+`)
)

// ExtractMinutes 取出第一個「n minutes / n hours」並換算成分鐘
func ExtractMinutes(text string) (int, bool) {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "h") {
		n *= 60
	}
	return int(n + 0.5), true
}

// LeadingInt 取出字串中的第一個整數
func LeadingInt(text string) (int, bool) {
	m := leadingNumber.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}
