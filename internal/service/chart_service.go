package service

import (
	"context"
	"fmt"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/chart"
	"github.com/Noviath61/finsight/internal/events"
	"github.com/Noviath61/finsight/internal/market"
	"github.com/Noviath61/finsight/internal/model"
	"go.uber.org/zap"
)

// dailyHistoryLimit caps the number of daily closes requested for 1day
const dailyHistoryLimit = 500

// ChartService retrieves price series and prepares them for charting
type ChartService struct {
	ranges    RangeSeriesSource
	intraday  SeriesSource
	publisher events.Publisher
	logger    *zap.Logger
}

// NewChartService creates a new chart service
func NewChartService(ranges RangeSeriesSource, intraday SeriesSource, publisher events.Publisher, logger *zap.Logger) *ChartService {
	return &ChartService{
		ranges:    ranges,
		intraday:  intraday,
		publisher: publisher,
		logger:    logger,
	}
}

// GetSeries returns the raw, newest-first series for symbol at granularity g
func (s *ChartService) GetSeries(ctx context.Context, symbol string, g market.Granularity) ([]model.PricePoint, error) {
	switch {
	case g.IsRange():
		return s.ranges.GetTimeSeries(ctx, symbol, "1day", g.OutputSize())
	case g == market.OneDay:
		return s.intraday.GetDailyHistory(ctx, symbol, dailyHistoryLimit)
	default:
		return s.intraday.GetHistoricalChart(ctx, symbol, g.String())
	}
}

// GetChart returns the display-ready chart for symbol. An empty series is
// an empty chart, not an error.
func (s *ChartService) GetChart(ctx context.Context, symbol string, g market.Granularity) (*model.Chart, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, apperr.ErrEmptySymbol
	}
	if g == "" {
		g = market.DefaultGranularity
	}

	series, err := s.GetSeries(ctx, symbol, g)
	if err != nil {
		s.logger.Info("Chart lookup failed",
			zap.String("symbol", symbol),
			zap.String("granularity", g.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get %s series for %s: %w", g, symbol, err)
	}

	c := chart.Build(symbol, series, g)

	events.Emit(s.publisher, s.logger, events.TopicLookups, symbol, events.Event{
		Type:        events.TypeChartRequested,
		Symbol:      symbol,
		Granularity: g.String(),
	})

	return &c, nil
}
