// Package chart turns close-price series into display-ready charts: ordering,
// axis tick selection and the shared timestamp formatter.
package chart

import (
	"sort"
	"time"

	"github.com/Noviath61/finsight/internal/market"
	"github.com/Noviath61/finsight/internal/model"
)

// targetTicks is the approximate number of labels on hour/day axes
const targetTicks = 6

// subHourStepMinutes aligns sub-hour ticks to wall-clock minutes
var subHourStepMinutes = map[market.Granularity]int{
	market.OneMinute:     15,
	market.FiveMinutes:   30,
	market.FifteenMinute: 60,
	market.ThirtyMinutes: 60,
}

const defaultSubHourStep = 30

// Normalize returns a chronological copy of series. Vendor series arrive
// newest-first; selecting ticks on them yields a mirrored axis.
func Normalize(series []model.PricePoint) []model.PricePoint {
	out := make([]model.PricePoint, len(series))
	copy(out, series)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// SelectTicks picks the timestamps of a chronological series that receive an
// axis label.
func SelectTicks(series []model.PricePoint, g market.Granularity) []time.Time {
	ticks := []time.Time{}
	if len(series) == 0 {
		return ticks
	}

	if g.IsSubHour() {
		step, ok := subHourStepMinutes[g]
		if !ok {
			step = defaultSubHourStep
		}
		for _, p := range series {
			if p.Time.Minute()%step == 0 {
				ticks = append(ticks, p.Time)
			}
		}
		return ticks
	}

	step := len(series) / targetTicks
	if step == 0 {
		step = 1
	}
	for i := 0; i < len(series); i += step {
		ticks = append(ticks, series[i].Time)
	}
	return ticks
}
