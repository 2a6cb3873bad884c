package market

import (
	"fmt"
	"strings"

	"github.com/Noviath61/finsight/internal/apperr"
)

// Granularity is the time resolution of a requested price series
type Granularity string

// Intraday granularities, served from the historical chart source
const (
	OneMinute     Granularity = "1min"
	FiveMinutes   Granularity = "5min"
	FifteenMinute Granularity = "15min"
	ThirtyMinutes Granularity = "30min"
	OneHour       Granularity = "1hour"
	FourHours     Granularity = "4hour"
	OneDay        Granularity = "1day"
)

// Range granularities of the day-based dashboard variant
const (
	Range1D  Granularity = "1d"
	Range5D  Granularity = "5d"
	Range30D Granularity = "30d"
	Range3M  Granularity = "3m"
	Range1Y  Granularity = "1y"
)

// DefaultGranularity is used when a client does not choose one
const DefaultGranularity = Range5D

var intraday = []Granularity{OneMinute, FiveMinutes, FifteenMinute, ThirtyMinutes, OneHour, FourHours, OneDay}

var ranges = []Granularity{Range1D, Range5D, Range30D, Range3M, Range1Y}

// rangeOutputSize is the number of daily bars requested for each range
var rangeOutputSize = map[Granularity]int{
	Range1D:  1,
	Range5D:  5,
	Range30D: 30,
	Range3M:  90,
	Range1Y:  365,
}

// All returns every supported granularity, intraday first
func All() []Granularity {
	all := make([]Granularity, 0, len(intraday)+len(ranges))
	all = append(all, intraday...)
	return append(all, ranges...)
}

// Parse validates s as a granularity. An empty string yields the default.
func Parse(s string) (Granularity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultGranularity, nil
	}
	for _, g := range All() {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperr.ErrInvalidGranularity, s)
}

// IsRange reports whether g belongs to the day-based range set
func (g Granularity) IsRange() bool {
	_, ok := rangeOutputSize[g]
	return ok
}

// IsSubHour reports whether g is finer than one hour
func (g Granularity) IsSubHour() bool {
	switch g {
	case OneMinute, FiveMinutes, FifteenMinute, ThirtyMinutes:
		return true
	}
	return false
}

// IsClockScale reports whether timestamps at g are shown as clock times rather than dates
func (g Granularity) IsClockScale() bool {
	s := string(g)
	return strings.Contains(s, "min") || strings.Contains(s, "hour")
}

// OutputSize returns the number of daily bars to request for a range granularity.
// Unknown ranges get 30.
func (g Granularity) OutputSize() int {
	if n, ok := rangeOutputSize[g]; ok {
		return n
	}
	return 30
}

func (g Granularity) String() string {
	return string(g)
}
