package compat

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	MinPercentage = 60
	MaxPercentage = 100

	// defaultPercentage is used when the text carries no "<digits>%" at all.
	defaultPercentage = 70
)

var (
	linePattern    = regexp.MustCompile(`궁합\s*(\d+)%\s*-\s*(.+)`)
	percentPattern = regexp.MustCompile(`(\d+)%`)
)

// Parse extracts a percentage and a message from free model output. It never
// fails: the formatted line wins, then the first "<digits>%", then 70. The
// percentage is always clamped and the message falls back to the whole text.
func Parse(raw string) (int, string) {
	text := strings.TrimSpace(raw)

	if m := linePattern.FindStringSubmatch(text); m != nil {
		message := strings.TrimSpace(m[2])
		if message == "" {
			message = text
		}
		return Clamp(atoi(m[1])), message
	}

	if m := percentPattern.FindStringSubmatch(text); m != nil {
		return Clamp(atoi(m[1])), text
	}

	return Clamp(defaultPercentage), text
}

// Clamp bounds x to [MinPercentage, MaxPercentage]. Clamp(Clamp(x)) == Clamp(x).
func Clamp(x int) int {
	return max(MinPercentage, min(MaxPercentage, x))
}

// atoi parses a run of ASCII digits. Only overflow can fail, which saturates.
func atoi(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return MaxPercentage
	}
	return n
}
