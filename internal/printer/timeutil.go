package printer

import (
	"fmt"
	"time"
)

// Ages over this are shown as a date.
const maxRelativeAge = 30 * 24 * time.Hour

// Age returns the compact age of t relative to now, e.g. "just now", "5m ago",
// "3h ago", "2d ago". Ages over a month are shown as the UTC date.
func Age(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		// Includes clock skew from other hosts.
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff <= maxRelativeAge:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}

	return t.UTC().Format(time.DateOnly)
}

// TimeAgo is Age relative to the current time.
func TimeAgo(t time.Time) string {
	return Age(t, time.Now())
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
