package domain

import (
	"fmt"
	"time"
)

// FormatSize renders a byte count the way the dashboard shows it.
// Zero and negative counts render as "0 Bytes".
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB", "TB"}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", n, units[0])
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}

// FormatTimestamp renders a unix-millisecond timestamp for listings.
// Zero renders as a dash rather than the epoch.
func FormatTimestamp(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05")
}
