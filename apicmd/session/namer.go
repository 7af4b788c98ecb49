package session

import (
	"fmt"
	"time"

	"github.com/gcnwokike/API-Commander/apicmd/cliutil"
)

// noURLLabel stands in for the URL portion when the request has none yet.
const noURLLabel = "[No URL]"

// timeAgoBuckets from coarsest to finest. A bucket applies as soon as more
// than one of its units has elapsed, and the count is floored, so ages just
// past a boundary read "1 hours ago", "1 days ago" and so on.
var timeAgoBuckets = []struct {
	seconds int64
	unit    string
}{
	{31536000, "year"},
	{2592000, "month"},
	{604800, "week"},
	{86400, "day"},
	{3600, "hour"},
	{60, "minute"},
}

// FormatTimeAgo renders the age of a unix-millisecond timestamp in the
// coarsest applicable bucket, or "just now" up to one minute.
func FormatTimeAgo(timestampMS int64, now time.Time) string {
	seconds := (now.UnixMilli() - timestampMS) / 1000
	for _, bucket := range timeAgoBuckets {
		// seconds/bucket > 1 as a real quotient, floored for display.
		if seconds > bucket.seconds {
			return fmt.Sprintf("%d %ss ago", seconds/bucket.seconds, bucket.unit)
		}
	}
	return "just now"
}

// Name renders the display name "<METHOD>: <url> | <age>". The URL segment
// is truncated to maxURL runes and falls back to a placeholder when empty.
func Name(method, url string, timestampMS int64, now time.Time, maxURL int) string {
	target := noURLLabel
	if url != "" {
		target = cliutil.TruncateString(url, maxURL)
	}
	return method + ": " + target + " | " + FormatTimeAgo(timestampMS, now)
}
