package utils

import "time"

func NowUTC() time.Time {
	return time.Now().UTC()
}

// Timestamp formats a time the way the wire layer expects (RFC 3339 UTC).
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
