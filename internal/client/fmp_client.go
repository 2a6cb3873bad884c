package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Noviath61/finsight/internal/config"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FMPClient handles communication with the Financial Modeling Prep API
type FMPClient struct {
	baseURL    string
	apiKey     string
	loc        *time.Location
	httpClient *http.Client
	logger     *zap.Logger
}

// NewFMPClient creates a new FMP API client. Vendor timestamps are read in loc.
func NewFMPClient(cfg config.VendorConfig, loc *time.Location, logger *zap.Logger) *FMPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &FMPClient{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		loc:     loc,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *FMPClient) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
}

// GetStockScreener retrieves the symbol directory
func (c *FMPClient) GetStockScreener(ctx context.Context, limit int) ([]model.RawSymbol, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var records []model.RawSymbol
	if err := getJSON(ctx, c.httpClient, c.logger, "fmp", c.endpoint("/stock-screener", params), &records); err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched symbol directory", zap.Int("count", len(records)))
	return records, nil
}

type fmpBar struct {
	Date  string          `json:"date"`
	Close decimal.Decimal `json:"close"`
}

func (c *FMPClient) toPoints(symbol string, bars []fmpBar) []model.PricePoint {
	points := make([]model.PricePoint, 0, len(bars))
	for i, bar := range bars {
		t, err := parseVendorTime(bar.Date, c.loc)
		if err != nil {
			c.logger.Warn("Skipping bar with malformed date",
				zap.String("symbol", symbol),
				zap.Int("index", i),
				zap.String("date", bar.Date))
			continue
		}
		points = append(points, model.PricePoint{Time: t, Close: bar.Close})
	}
	return points
}

// GetHistoricalChart retrieves intraday bars, newest first. interval uses
// FMP names (1min, 5min, 15min, 30min, 1hour, 4hour).
func (c *FMPClient) GetHistoricalChart(ctx context.Context, symbol, interval string) ([]model.PricePoint, error) {
	path := fmt.Sprintf("/historical-chart/%s/%s", url.PathEscape(interval), url.PathEscape(symbol))

	var bars []fmpBar
	if err := getJSON(ctx, c.httpClient, c.logger, "fmp", c.endpoint(path, nil), &bars); err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		c.logger.Warn("FMP returned empty chart",
			zap.String("symbol", symbol),
			zap.String("interval", interval))
	}
	return c.toPoints(symbol, bars), nil
}

// GetDailyHistory retrieves up to limit daily closes, newest first
func (c *FMPClient) GetDailyHistory(ctx context.Context, symbol string, limit int) ([]model.PricePoint, error) {
	path := fmt.Sprintf("/historical-price-full/%s", url.PathEscape(symbol))
	params := url.Values{}
	params.Set("serietype", "line")
	if limit > 0 {
		params.Set("timeseries", strconv.Itoa(limit))
	}

	var body struct {
		Symbol     string   `json:"symbol"`
		Historical []fmpBar `json:"historical"`
	}
	if err := getJSON(ctx, c.httpClient, c.logger, "fmp", c.endpoint(path, params), &body); err != nil {
		return nil, err
	}

	return c.toPoints(symbol, body.Historical), nil
}

// GetProfile retrieves the company profile, or nil when FMP has none
func (c *FMPClient) GetProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	path := fmt.Sprintf("/profile/%s", url.PathEscape(symbol))

	var profiles []model.CompanyProfile
	if err := getJSON(ctx, c.httpClient, c.logger, "fmp", c.endpoint(path, nil), &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// GetKeyMetricsTTM retrieves trailing-twelve-month key metrics, or nil when absent
func (c *FMPClient) GetKeyMetricsTTM(ctx context.Context, symbol string) (*model.KeyMetricsTTM, error) {
	path := fmt.Sprintf("/key-metrics/%s", url.PathEscape(symbol))
	params := url.Values{}
	params.Set("period", "ttm")
	params.Set("limit", "1")

	var metrics []model.KeyMetricsTTM
	if err := getJSON(ctx, c.httpClient, c.logger, "fmp", c.endpoint(path, params), &metrics); err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, nil
	}
	return &metrics[0], nil
}
