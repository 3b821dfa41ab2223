package util

import (
	"strconv"
	"time"
)

// ParseRetryAfter interprets a Retry-After header value given in seconds.
// Zero means the service did not indicate a pause.
func ParseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
