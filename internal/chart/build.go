package chart

import (
	"time"

	"github.com/Noviath61/finsight/internal/market"
	"github.com/Noviath61/finsight/internal/model"
)

// Build normalizes series and assembles the chart payload for symbol at g
func Build(symbol string, series []model.PricePoint, g market.Granularity) model.Chart {
	points := Normalize(series)
	ticks := SelectTicks(points, g)

	isTick := make(map[time.Time]struct{}, len(ticks))
	labels := make([]string, 0, len(ticks))
	for _, t := range ticks {
		isTick[t] = struct{}{}
		labels = append(labels, FormatTimestamp(t, g))
	}

	c := model.Chart{
		Symbol:      symbol,
		Granularity: g.String(),
		Points:      make([]model.ChartPoint, 0, len(points)),
		Ticks:       ticks,
		TickLabels:  labels,
	}
	if len(points) == 0 {
		return c
	}

	c.Min, c.Max = points[0].Close, points[0].Close
	for _, p := range points {
		_, tick := isTick[p.Time]
		c.Points = append(c.Points, model.ChartPoint{
			Time:  p.Time,
			Label: FormatTimestamp(p.Time, g),
			Close: p.Close,
			Tick:  tick,
		})
		if p.Close.LessThan(c.Min) {
			c.Min = p.Close
		}
		if p.Close.GreaterThan(c.Max) {
			c.Max = p.Close
		}
	}

	if points[len(points)-1].Close.GreaterThanOrEqual(points[0].Close) {
		c.Trend = model.TrendUp
	} else {
		c.Trend = model.TrendDown
	}
	return c
}
