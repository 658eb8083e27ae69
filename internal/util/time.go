package util

import (
	"math/rand/v2"
	"time"
)

// NextMidnight returns the next 00:00 in the named location, falling back to UTC
// when the zone database is unavailable.
func NextMidnight(now time.Time, location string) time.Time {
	loc, err := time.LoadLocation(location)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

// Backoff returns base * 2^(attempt-1) plus up to jitter of random delay.
func Backoff(attempt int, base, jitter time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := base << (attempt - 1)
	if jitter > 0 {
		delay += rand.N(jitter)
	}
	return delay
}
