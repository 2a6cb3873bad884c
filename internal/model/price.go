package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one sample of a close-price series
type PricePoint struct {
	Time  time.Time       `json:"time"`
	Close decimal.Decimal `json:"close"`
}

// ChartPoint is a price point labelled for display
type ChartPoint struct {
	Time  time.Time       `json:"time"`
	Label string          `json:"label"`
	Close decimal.Decimal `json:"close"`
	Tick  bool            `json:"tick"`
}

// Chart is the display-ready form of a price series
type Chart struct {
	Symbol      string          `json:"symbol"`
	Granularity string          `json:"granularity"`
	Points      []ChartPoint    `json:"points"`
	Ticks       []time.Time     `json:"ticks"`
	TickLabels  []string        `json:"tick_labels"`
	Trend       string          `json:"trend,omitempty"`
	Min         decimal.Decimal `json:"min"`
	Max         decimal.Decimal `json:"max"`
}

// Trend values
const (
	TrendUp   = "up"
	TrendDown = "down"
)
