package service

import (
	"context"

	"github.com/Noviath61/finsight/internal/model"
	"github.com/shopspring/decimal"
)

// DirectorySource supplies the raw symbol directory
type DirectorySource interface {
	GetStockScreener(ctx context.Context, limit int) ([]model.RawSymbol, error)
}

// DirectorySnapshot persists the last good directory
type DirectorySnapshot interface {
	SaveDirectory(ctx context.Context, records []model.RawSymbol) error
	LoadDirectory(ctx context.Context) ([]model.RawSymbol, error)
}

// QuoteSource supplies live prices and quote snapshots
type QuoteSource interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	GetQuote(ctx context.Context, symbol string) (model.QuoteSnapshot, error)
}

// RangeSeriesSource supplies daily closes for the day-range granularities
type RangeSeriesSource interface {
	GetTimeSeries(ctx context.Context, symbol, interval string, outputSize int) ([]model.PricePoint, error)
}

// SeriesSource supplies intraday bars and daily history
type SeriesSource interface {
	GetHistoricalChart(ctx context.Context, symbol, interval string) ([]model.PricePoint, error)
	GetDailyHistory(ctx context.Context, symbol string, limit int) ([]model.PricePoint, error)
}

// FundamentalsSource supplies company profiles and TTM metrics
type FundamentalsSource interface {
	GetProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error)
	GetKeyMetricsTTM(ctx context.Context, symbol string) (*model.KeyMetricsTTM, error)
}

// QuoteStore caches assembled quotes
type QuoteStore interface {
	Get(ctx context.Context, symbol string) (*model.StockQuote, error)
	Set(ctx context.Context, quote *model.StockQuote) error
}
