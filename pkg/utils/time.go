package utils

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseUserTime reads one bound of a user-supplied time range, such as the
// start_time and end_time filters of the security-event search. Values are
// RFC3339 or a bare YYYY-MM-DD date and are returned in UTC. A bare date used
// as the end bound covers that whole day, up to 23:59:59.
func ParseUserTime(timeStr string, isEndTime bool) (time.Time, error) {
	timeStr = strings.TrimSpace(timeStr)

	if t, err := time.Parse(time.RFC3339, timeStr); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(dateLayout, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format, expected RFC3339 or YYYY-MM-DD, got %q", timeStr)
	}
	if isEndTime {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}
