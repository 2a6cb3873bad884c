package chart

import (
	"time"

	"github.com/Noviath61/finsight/internal/market"
)

const (
	clockLayout = "3:04 PM"
	dateLayout  = "1/2/06"
)

// FormatTimestamp renders t for axis ticks and tooltips alike: clock time for
// minute and hour granularities, calendar date otherwise.
func FormatTimestamp(t time.Time, g market.Granularity) string {
	if g.IsClockScale() {
		return t.Format(clockLayout)
	}
	return t.Format(dateLayout)
}
