package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock converts a GTFS clock string ("HH:MM:SS", HH may exceed 23 for
// service running past midnight) into seconds since the service day began.
// The returned value is NOT normalized to 24 hours; elapsed-time arithmetic
// and chronological sorting must use it as-is.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	return h*3600 + m*60 + sec, nil
}

// HourOf buckets a service-day second count into an hour of day.
// Post-midnight times wrap: 25:15:00 buckets into hour 1.
func HourOf(seconds int) int {
	return (seconds / 3600) % 24
}

// FormatClock renders seconds since the service day began back into
// "HH:MM:SS". Hours above 23 are kept as-is.
func FormatClock(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ElapsedMinutes returns the minutes between two clock values, both given as
// un-normalized service-day seconds.
func ElapsedMinutes(fromSec, toSec int) float64 {
	return float64(toSec-fromSec) / 60.0
}
