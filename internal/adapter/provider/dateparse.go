package provider

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Providers report publication times in wildly different shapes: SerpAPI
// uses a US-style timestamp with a literal zone suffix, Naver uses RFC1123
// with a numeric zone, and both emit relative phrases ("2 hours ago",
// "3일 전") for fresh stories. Unparseable input maps to nil, which sorts
// as the epoch downstream.

var relativePattern = regexp.MustCompile(`^(\d+)\s*(seconds?|minutes?|hours?|days?|weeks?|months?|years?|초|분|시간|일|주|개월|달|년)\s*(ago|전)$`)

var absoluteLayouts = []string{
	"01/02/2006, 03:04 PM", // SerpAPI, zone suffix stripped first
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a provider date string into UTC, or nil when no known
// format matches.
func ParseDate(raw string) *time.Time {
	return parseDateAt(raw, time.Now())
}

func parseDateAt(raw string, now time.Time) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if m := relativePattern.FindStringSubmatch(strings.ToLower(s)); m != nil {
		n, _ := strconv.Atoi(m[1])
		if d, ok := relativeUnit(m[2]); ok {
			t := now.Add(-time.Duration(n) * d).UTC()
			return &t
		}
	}

	s = strings.TrimSuffix(s, ", +0000 UTC")
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// relativeUnit maps an English or Korean time unit to its duration.
// Months and years are approximated as 30 and 365 days.
func relativeUnit(unit string) (time.Duration, bool) {
	switch strings.TrimSuffix(unit, "s") {
	case "second", "초":
		return time.Second, true
	case "minute", "분":
		return time.Minute, true
	case "hour", "시간":
		return time.Hour, true
	case "day", "일":
		return 24 * time.Hour, true
	case "week", "주":
		return 7 * 24 * time.Hour, true
	case "month", "개월", "달":
		return 30 * 24 * time.Hour, true
	case "year", "년":
		return 365 * 24 * time.Hour, true
	}
	return 0, false
}
