package cliutil

import (
	"fmt"
	"strings"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count in human-readable form with two decimals
// ("1.50 KB"). Negative counts render as "-".
func FormatBytes(n int64) string {
	if n < 0 {
		return "-"
	}
	if n == 0 {
		return "0 B"
	}

	size := float64(n)
	unit := 0
	for size >= 1024 && unit < len(byteUnits)-1 {
		size /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d B", n)
	}

	s := fmt.Sprintf("%.2f", size)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + " " + byteUnits[unit]
}

// EscapeMarkdown escapes characters that break Markdown table cells.
func EscapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}

// TruncateString shortens s to max runes, appending "..." when truncated.
func TruncateString(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
