package model

import (
	"time"

	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"
)

// QuoteSnapshot is a point-in-time OHLCV summary. Every field may be absent.
type QuoteSnapshot struct {
	Open          null.Float `json:"open"`
	DayHigh       null.Float `json:"day_high"`
	DayLow        null.Float `json:"day_low"`
	PreviousClose null.Float `json:"previous_close"`
	Volume        null.Int   `json:"volume"`
}

// IsEmpty reports whether no field of the snapshot is present
func (q QuoteSnapshot) IsEmpty() bool {
	return !q.Open.Valid && !q.DayHigh.Valid && !q.DayLow.Valid &&
		!q.PreviousClose.Valid && !q.Volume.Valid
}

// StockQuote is the combined live price and quote snapshot for a symbol
type StockQuote struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"company_name"`
	Price       decimal.Decimal `json:"price"`
	Quote       QuoteSnapshot   `json:"quote"`
	Display     QuoteDisplay    `json:"display"`
	Warning     string          `json:"warning,omitempty"`
	FetchedAt   time.Time       `json:"fetched_at"`
}

// QuoteDisplay carries the rendered form of a quote, with placeholders for absent fields
type QuoteDisplay struct {
	Price         string `json:"price"`
	Open          string `json:"open"`
	DayHigh       string `json:"day_high"`
	DayLow        string `json:"day_low"`
	PreviousClose string `json:"previous_close"`
	Volume        string `json:"volume"`
}
