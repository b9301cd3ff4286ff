package metadata

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDate reads the loosely formatted dates found in post heads
// ("2025-03-01", RFC 3339, "March 1, 2025", ...). Dates without a zone
// are taken as UTC.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
