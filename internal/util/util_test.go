package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "mobile repair shop", CollapseWhitespace("  mobile \t repair\n\nshop "))
	assert.Equal(t, "", CollapseWhitespace("   "))
}

func TestDecodeQueryText(t *testing.T) {
	assert.Equal(t, "tea stall", DecodeQueryText("tea%20stall"))
	assert.Equal(t, "100% juice", DecodeQueryText("100% juice"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "ab...", TruncateString("abcdef", 2))
	assert.Equal(t, "₹₹", TruncateString("₹₹", 2))
}

func TestNextMidnight(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	next := NextMidnight(now, "UTC")
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), next)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, Backoff(1, 100*time.Millisecond, 0))
	assert.Equal(t, 400*time.Millisecond, Backoff(3, 100*time.Millisecond, 0))

	d := Backoff(2, 100*time.Millisecond, 50*time.Millisecond)
	assert.GreaterOrEqual(t, d, 200*time.Millisecond)
	assert.Less(t, d, 250*time.Millisecond)
}
