package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		text   string
		want   int
		parsed bool
	}{
		{"30m", 30, true},
		{"2h", 120, true},
		{"45", 45, true},
		{"task 30m", 30, true},
		{"1h meeting", 60, true},
		{"Review 2 H", 120, true},
		{"call 15 min", 15, true},
		{"call 15 minutes", 15, true},
		{"deep work 3 hours", 180, true},
		{"first 20m then 2h", 20, true},
		{"", 0, false},
		{"write report", 0, false},
		{"99999999999999999999999 m", 0, false},
	}
	for _, tc := range cases {
		got := ParseDuration(tc.text)
		assert.Equal(t, tc.parsed, got.Parsed, "text=%q", tc.text)
		assert.Equal(t, tc.want, got.Minutes, "text=%q", tc.text)
	}
}

func TestDurationHint_Or(t *testing.T) {
	assert.Equal(t, 45, DurationHint{Minutes: 45, Parsed: true}.Or(FallbackMinutes))
	assert.Equal(t, FallbackMinutes, DurationHint{}.Or(FallbackMinutes))
	// A parsed zero is a real value, not a fallback.
	assert.Equal(t, 0, DurationHint{Minutes: 0, Parsed: true}.Or(FallbackMinutes))
}

func TestTotalMinutes(t *testing.T) {
	assert.Equal(t, 60, TotalMinutes([]string{"task 30m", "another 30m"}, FallbackMinutes))
	assert.Equal(t, 150, TotalMinutes([]string{"2h", "no hint"}, FallbackMinutes))
	assert.Equal(t, 60, TotalMinutes([]string{"", ""}, FallbackMinutes))
}

func TestTotalMinutes_EmptyUsesFallbackOnce(t *testing.T) {
	assert.Equal(t, FallbackMinutes, TotalMinutes(nil, FallbackMinutes))
	assert.Equal(t, 15, TotalMinutes([]string{}, 15))
}

func TestTotalMinutes_Saturates(t *testing.T) {
	huge := []string{"100000000h", "100000000h"}
	assert.Equal(t, maxMinutes, TotalMinutes(huge, FallbackMinutes))
}
