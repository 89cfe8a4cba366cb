package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"Simmer for 45 minutes until tender", 45, true},
		{"Cook 1 hour", 60, true},
		{"about 1.5 hrs", 90, true},
		{"Ready in 20 mins, rest 2 hours", 20, true},
		{"no time given", 0, false},
	}
	for _, tc := range cases {
		got, ok := ExtractMinutes(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestLeadingInt(t *testing.T) {
	n, ok := LeadingInt("serves 6 people")
	assert.True(t, ok)
	assert.Equal(t, 6, n)

	_, ok = LeadingInt("many")
	assert.False(t, ok)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "ñá...", Truncate("ñáé", 2))
}
