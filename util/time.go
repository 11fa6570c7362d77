package util

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NextRollover returns the next day boundary after now, offset into the
// day, in the given location. The following day is a calendar day, not
// 24 hours, so DST transition days keep the boundary at local midnight.
func NextRollover(now time.Time, loc *time.Location, offset time.Duration) time.Time {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	next := midnight.Add(offset)
	if next.After(now) {
		return next
	}
	return midnight.AddDate(0, 0, 1).Add(offset)
}

func number(n int, suffix string) string {
	switch n {
	case 0:
		return ""
	default:
		return fmt.Sprintf("%d%s", n, suffix)
	}
}

func joinpair(a, b string) string {
	if a != "" && b != "" {
		return a + " " + b
	}
	return a + b
}

func ShortDuration(d time.Duration) string {
	switch {
	case d.Hours() >= 24:
		days := int(d.Hours() / 24)
		hours := int(d.Hours()) - days*24
		return joinpair(number(days, "d"), number(hours, "h"))
	case d.Hours() >= 1:
		hours := int(d.Hours())
		mins := int(int(d.Minutes()) - 60*hours)
		return joinpair(number(hours, "h"), number(mins, "m"))
	case d.Minutes() >= 1:
		mins := int(d.Minutes())
		secs := int(int(d.Seconds()) - 60*mins)
		return joinpair(number(mins, "m"), number(secs, "s"))
	case d.Seconds() >= 1:
		secs := int(d.Seconds())
		return number(secs, "s")
	case d.Nanoseconds() >= 1000:
		ms := int(d.Seconds() * 1000)
		return number(ms, "ms")
	}
	return "0s"
}

var durationUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
	"y": 365 * 24 * time.Hour,
}

var reDur1 = regexp.MustCompile(`^(\d+)([smhdwy])$`)
var reDur2 = regexp.MustCompile(`^(\d+)([smhdwy])\s*(\d+)([smhdwy])$`)

func duration(m []string) time.Duration {
	var i int
	i, _ = strconv.Atoi(m[0])
	return time.Duration(i) * durationUnits[m[1]]
}

// ParseDuration does the same as time.ParseDuration but understands more
// units (d for day, w for week, y for year).
func ParseDuration(s string) (total time.Duration, err error) {
	s = strings.TrimSpace(s)

	m1 := reDur1.FindStringSubmatch(s)
	if m1 != nil {
		return duration(m1[1:3]), nil
	}

	m2 := reDur2.FindStringSubmatch(s)
	if m2 != nil {
		return duration(m2[1:3]) + duration(m2[3:5]), nil
	}

	return 0, errors.New("invalid duration")
}
