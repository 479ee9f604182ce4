package utils

import (
	"math/rand"
	"strconv"
	"time"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// ParseDate parses a YYYY-MM-DD date string in UTC.
func ParseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// Today returns the current UTC date truncated to midnight.
func Today() time.Time {
	return TruncateDate(time.Now().UTC())
}

// TruncateDate drops the time-of-day component.
func TruncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GenerateOrderCode creates an opaque numeric order code for the payment
// gateway: a rolling millisecond head plus 6 random low digits. The low
// digits change on every call so a retried payment link never reuses a code.
// Uniqueness is enforced by the payment_orders table, not by this function.
func GenerateOrderCode() int64 {
	head := time.Now().UnixMilli() % 1_000_000_000
	noise := rand.Int63n(900000) + 100000

	return head*1_000_000 + noise
}
