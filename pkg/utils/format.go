package utils

import "time"

// FormatDate renders a timestamp for display, e.g. "Aug 30, 2026 at 2:05 PM".
func FormatDate(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006 at 3:04 PM")
}
