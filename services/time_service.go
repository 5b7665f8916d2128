package services

import "time"

// FormatTimestamp renders t in ISO 8601 form with sub-second precision.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
