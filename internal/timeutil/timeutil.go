package timeutil

import (
	"regexp"
	"strconv"
	"time"
)

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// UpstreamLayout is the second-precision UTC timestamp the odds API accepts.
const UpstreamLayout = "2006-01-02T15:04:05Z"

var clockPattern = regexp.MustCompile(`(\d+):(\d+)`)

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatUpstream formats t in UTC without fractional seconds.
func FormatUpstream(t time.Time) string {
	return t.UTC().Format(UpstreamLayout)
}

// DayBounds returns the first and last instant of t's calendar day in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// ParseClock converts a game clock such as "7:00" or "11:45" into seconds.
// Missing or unparseable clocks yield zero.
func ParseClock(clock string) int {
	m := clockPattern.FindStringSubmatch(clock)
	if m == nil {
		return 0
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	seconds, err := strconv.Atoi(m[2])
	if err != nil {
		return 0
	}
	return minutes*60 + seconds
}

// ResolveLocation loads an IANA zone, falling back to UTC.
func ResolveLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
