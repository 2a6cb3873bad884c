package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/config"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TwelveDataClient handles communication with the Twelve Data API
type TwelveDataClient struct {
	baseURL    string
	apiKey     string
	loc        *time.Location
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTwelveDataClient creates a new Twelve Data API client
func NewTwelveDataClient(cfg config.VendorConfig, loc *time.Location, logger *zap.Logger) *TwelveDataClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &TwelveDataClient{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		loc:     loc,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *TwelveDataClient) endpoint(path string, params url.Values) string {
	params.Set("apikey", c.apiKey)
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
}

// Twelve Data reports errors in a 200 body with status "error"
type twelveStatus struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GetPrice retrieves the latest price. A body without a price means the
// symbol is unknown to the vendor.
func (c *TwelveDataClient) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var body struct {
		twelveStatus
		Price string `json:"price"`
	}
	if err := getJSON(ctx, c.httpClient, c.logger, "twelvedata", c.endpoint("/price", params), &body); err != nil {
		return decimal.Zero, err
	}

	if strings.TrimSpace(body.Price) == "" {
		c.logger.Debug("No price returned",
			zap.String("symbol", symbol),
			zap.Int("code", body.Code),
			zap.String("message", body.Message))
		return decimal.Zero, fmt.Errorf("price for %s: %w", symbol, apperr.ErrSymbolNotFound)
	}

	price, err := decimal.NewFromString(body.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed price %q for %s: %w", body.Price, symbol, apperr.ErrTransport)
	}
	return price, nil
}

// GetQuote retrieves the OHLCV snapshot. Vendor-side errors yield an empty
// snapshot rather than an error; every field is independently optional.
func (c *TwelveDataClient) GetQuote(ctx context.Context, symbol string) (model.QuoteSnapshot, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var body struct {
		twelveStatus
		Open          string `json:"open"`
		High          string `json:"high"`
		Low           string `json:"low"`
		PreviousClose string `json:"previous_close"`
		Volume        string `json:"volume"`
	}
	if err := getJSON(ctx, c.httpClient, c.logger, "twelvedata", c.endpoint("/quote", params), &body); err != nil {
		return model.QuoteSnapshot{}, err
	}

	if body.Status == "error" {
		c.logger.Warn("Quote unavailable",
			zap.String("symbol", symbol),
			zap.Int("code", body.Code),
			zap.String("message", body.Message))
		return model.QuoteSnapshot{}, nil
	}

	return model.QuoteSnapshot{
		Open:          optionalFloat(body.Open),
		DayHigh:       optionalFloat(body.High),
		DayLow:        optionalFloat(body.Low),
		PreviousClose: optionalFloat(body.PreviousClose),
		Volume:        optionalInt(body.Volume),
	}, nil
}

// GetTimeSeries retrieves up to outputSize bars at interval, newest first.
// A body without values yields an empty series.
func (c *TwelveDataClient) GetTimeSeries(ctx context.Context, symbol, interval string, outputSize int) ([]model.PricePoint, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("outputsize", strconv.Itoa(outputSize))

	var body struct {
		twelveStatus
		Values []struct {
			Datetime string          `json:"datetime"`
			Close    decimal.Decimal `json:"close"`
		} `json:"values"`
	}
	if err := getJSON(ctx, c.httpClient, c.logger, "twelvedata", c.endpoint("/time_series", params), &body); err != nil {
		return nil, err
	}

	if len(body.Values) == 0 {
		c.logger.Warn("Twelve Data returned no values",
			zap.String("symbol", symbol),
			zap.String("interval", interval),
			zap.String("message", body.Message))
		return []model.PricePoint{}, nil
	}

	points := make([]model.PricePoint, 0, len(body.Values))
	for i, v := range body.Values {
		t, err := parseVendorTime(v.Datetime, c.loc)
		if err != nil {
			c.logger.Warn("Skipping value with malformed datetime",
				zap.String("symbol", symbol),
				zap.Int("index", i),
				zap.String("datetime", v.Datetime))
			continue
		}
		points = append(points, model.PricePoint{Time: t, Close: v.Close})
	}
	return points, nil
}
