package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserTime(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		isEndTime bool
		expected  time.Time
	}{
		{"rfc3339", "2025-07-01T08:30:00Z", false, time.Date(2025, 7, 1, 8, 30, 0, 0, time.UTC)},
		{"rfc3339 end is exact", "2025-07-01T08:30:00Z", true, time.Date(2025, 7, 1, 8, 30, 0, 0, time.UTC)},
		{"date start", "2025-07-01", false, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"date end", "2025-07-01", true, time.Date(2025, 7, 1, 23, 59, 59, 0, time.UTC)},
		{"offset", "2025-07-01T10:30:00+02:00", false, time.Date(2025, 7, 1, 8, 30, 0, 0, time.UTC)},
		{"surrounding spaces", " 2025-07-01 ", false, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseUserTime(tc.input, tc.isEndTime)
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseUserTime_Invalid(t *testing.T) {
	_, err := ParseUserTime("01/07/2025", false)
	assert.ErrorContains(t, err, "expected RFC3339 or YYYY-MM-DD")
}
