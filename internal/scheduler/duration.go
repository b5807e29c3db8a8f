package scheduler

import (
	"regexp"
	"strconv"
	"strings"
)

// FallbackMinutes is the duration assumed for a task with no usable hint.
const FallbackMinutes = 30

// maxMinutes caps parsed and aggregated durations so that they always fit in
// a time.Duration.
const maxMinutes = 1 << 27

var durationPattern = regexp.MustCompile(`(\d+)\s*(min|h|m)?`)

// DurationHint is the result of reading a duration out of free text.
// Parsed is false when the text held no usable number.
type DurationHint struct {
	Minutes int
	Parsed  bool
}

// Or returns the parsed minutes, or fallback when nothing was parsed.
func (h DurationHint) Or(fallback int) int {
	if h.Parsed {
		return h.Minutes
	}
	return fallback
}

// ParseDuration reads the first number in text, optionally followed by an
// "h" or "m"/"min" unit. Hours are converted to minutes; a bare number is
// taken as minutes.
func ParseDuration(text string) DurationHint {
	m := durationPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return DurationHint{}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > maxMinutes {
		return DurationHint{}
	}
	if strings.HasPrefix(m[2], "h") {
		n = min(n*60, maxMinutes)
	}
	return DurationHint{Minutes: n, Parsed: true}
}

// TotalMinutes sums the durations of tasks, substituting fallback for each
// task without a hint. An empty task list counts as a single fallback.
func TotalMinutes(tasks []string, fallback int) int {
	if len(tasks) == 0 {
		return fallback
	}
	total := 0
	for _, t := range tasks {
		total += ParseDuration(t).Or(fallback)
		if total >= maxMinutes {
			return maxMinutes
		}
	}
	return total
}
