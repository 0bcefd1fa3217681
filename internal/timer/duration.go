package timer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// durationUnits are checked in priority order. Only the first unit that
// matches is used: "1 hour 30 minutes" is one hour.
var durationUnits = []struct {
	re      *regexp.Regexp
	seconds int
}{
	{regexp.MustCompile(`(?i)(\d+)\s*hour`), 3600},
	{regexp.MustCompile(`(?i)(\d+)\s*minute`), 60},
	{regexp.MustCompile(`(?i)(\d+)\s*second`), 1},
}

// ParseDuration infers a countdown length in seconds from free step text.
// ok is false when no unit matches or the inferred duration is zero or
// does not fit in an int.
func ParseDuration(text string) (seconds int, ok bool) {
	for _, u := range durationUnits {
		m := u.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || n > math.MaxInt/u.seconds {
			return 0, false
		}
		return n * u.seconds, true
	}
	return 0, false
}

// labelMax is the display length of a timer label, in runes.
const labelMax = 30

// Label derives a timer label from step text, truncating long steps.
func Label(stepText string) string {
	r := []rune(stepText)
	if len(r) <= labelMax {
		return stepText
	}
	return string(r[:labelMax]) + "…"
}

// Format renders seconds as mm:ss, or hh:mm:ss once an hour or more remains.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
