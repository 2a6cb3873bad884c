package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "CN¥",
	"CAD": "CA$",
}

// FundamentalsService builds the fundamentals panel
type FundamentalsService struct {
	source FundamentalsSource
	logger *zap.Logger
}

// NewFundamentalsService creates a new fundamentals service
func NewFundamentalsService(source FundamentalsSource, logger *zap.Logger) *FundamentalsService {
	return &FundamentalsService{
		source: source,
		logger: logger,
	}
}

// Get loads the profile and TTM metrics for symbol. Absent fields render as
// placeholders; any fetch failure is ErrFundamentals.
func (s *FundamentalsService) Get(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, apperr.ErrEmptySymbol
	}

	var (
		profile *model.CompanyProfile
		metrics *model.KeyMetricsTTM
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.source.GetProfile(gctx, symbol)
		profile = p
		return err
	})
	g.Go(func() error {
		m, err := s.source.GetKeyMetricsTTM(gctx, symbol)
		metrics = m
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to load fundamentals", zap.String("symbol", symbol), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperr.ErrFundamentals, err)
	}

	return BuildFundamentals(symbol, profile, metrics), nil
}

// BuildFundamentals renders profile and metrics, either of which may be nil
func BuildFundamentals(symbol string, profile *model.CompanyProfile, metrics *model.KeyMetricsTTM) *model.Fundamentals {
	if profile == nil {
		profile = &model.CompanyProfile{}
	}
	if metrics == nil {
		metrics = &model.KeyMetricsTTM{}
	}

	f := &model.Fundamentals{
		Symbol: symbol,
		Overview: model.FundamentalsRow{
			Company:  orDefault(profile.CompanyName, symbol),
			Exchange: orDefault(orDefault(profile.ExchangeShortName, profile.Exchange), Placeholder),
			Sector:   orDefault(profile.Sector, Placeholder),
			Industry: orDefault(profile.Industry, Placeholder),
			Website:  orDefault(profile.Website, Placeholder),
		},
		Description: profile.Description,
	}

	pe := metrics.PERatioTTM
	if !pe.Valid {
		pe = profile.PE
	}

	yield := metrics.DividendYieldTTM
	if !yield.Valid && profile.LastDiv.Float64 != 0 && profile.Price.Float64 != 0 {
		yield = null.FloatFrom(profile.LastDiv.Float64 / profile.Price.Float64 * 100)
	}

	f.KeyMetrics = model.MetricsRow{
		MarketCap:     formatMoney(profile.MktCap, profile.Currency),
		PE:            formatFloat(pe, 2),
		EPS:           formatFloat(profile.EPS, 2),
		DividendYield: formatPercent(yield),
		Beta:          formatFloat(profile.Beta, 2),
	}
	return f
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// formatMoney renders a whole currency amount with thousands separators
func formatMoney(v null.Float, currency string) string {
	if !v.Valid || math.IsNaN(v.Float64) {
		return Placeholder
	}
	if currency == "" {
		currency = "USD"
	}
	amount := humanize.Comma(int64(math.Round(v.Float64)))
	if sym, ok := currencySymbols[currency]; ok {
		if amount[0] == '-' {
			return "-" + sym + amount[1:]
		}
		return sym + amount
	}
	return currency + " " + amount
}

func formatPercent(v null.Float) string {
	if !v.Valid {
		return Placeholder
	}
	return formatFloat(v, 2) + "%"
}
