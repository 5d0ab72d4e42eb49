package monitor

import "time"

// WireTimeLayout is the timestamp format of the search API (UTC, millisecond precision).
const WireTimeLayout = "2006-01-02T15:04:05.000Z"

// skewMargin widens every window to avoid boundary misses from clock skew.
const skewMargin = 10 * time.Second

// LowerBound returns the earliest acceptable creation time for a query as a wire string.
func LowerBound(now time.Time, lookback time.Duration) string {
	return now.Add(-lookback - skewMargin).UTC().Format(WireTimeLayout)
}
