// internal/workers/campaign/fallback-synthesis/text.go
package fallbacksynthesis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const maxHashtagBody = 30

var (
	youtubeURLPattern = regexp.MustCompile(`^https://www\.youtube\.com/watch\?v=[A-Za-z0-9_-]{11}$`)
	durationPattern   = regexp.MustCompile(`(?i)(\d+)\s*(day|week|month)`)
)

// fit trims s to max runes and pads it with pad until it reaches min.
func fit(s string, min, max int, pad string) string {
	s = strings.TrimSpace(s)
	for len([]rune(s)) < min {
		if s == "" {
			s = pad
			continue
		}
		s = s + " " + pad
	}
	return truncate(s, max)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}

// hashtag turns free text into a "#CamelCase" tag. ok is false when nothing
// usable is left.
func hashtag(text string) (string, bool) {
	var sb strings.Builder
	upper := true
	for _, r := range text {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if upper {
				r = unicode.ToUpper(r)
			}
			sb.WriteRune(r)
			upper = false
		case r == '_':
			sb.WriteRune(r)
		default:
			upper = true
		}
	}
	body := truncate(sb.String(), maxHashtagBody)
	if body == "" {
		return "", false
	}
	return "#" + body, true
}

// durationWeeks converts "30 days", "6 weeks" or "2 months" into a week
// count in [1, 12]. Unparseable input counts as 30 days.
func durationWeeks(duration string) int {
	days := 30
	if m := durationPattern.FindStringSubmatch(duration); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			switch strings.ToLower(m[2]) {
			case "day":
				days = n
			case "week":
				days = n * 7
			case "month":
				days = n * 30
			}
		}
	}
	weeks := int(math.Ceil(float64(days) / 7))
	if weeks < 1 {
		return 1
	}
	if weeks > 12 {
		return 12
	}
	return weeks
}

func appendUnique(list []string, seen map[string]bool, values ...string) []string {
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		list = append(list, v)
	}
	return list
}
