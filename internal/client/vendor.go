package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Vendor timestamp layouts, wall-clock without zone
const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// getJSON performs a GET and decodes the JSON body into out. Transport
// failures, non-200 statuses and undecodable bodies wrap apperr.ErrTransport.
func getJSON(ctx context.Context, httpClient *http.Client, logger *zap.Logger, vendor, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		logger.Error("Vendor request failed", zap.String("vendor", vendor), zap.Error(err))
		return fmt.Errorf("%s request: %w: %v", vendor, apperr.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Error("Vendor API error response",
			zap.String("vendor", vendor),
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(bodyBytes)))
		return fmt.Errorf("%s returned status code %d: %w", vendor, resp.StatusCode, apperr.ErrTransport)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.Error("Failed to decode vendor response", zap.String("vendor", vendor), zap.Error(err))
		return fmt.Errorf("failed to decode %s response: %w: %v", vendor, apperr.ErrTransport, err)
	}

	return nil
}

// parseVendorTime reads a vendor date or date-time in loc
func parseVendorTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == len(dateLayout) {
		return time.ParseInLocation(dateLayout, s, loc)
	}
	return time.ParseInLocation(dateTimeLayout, s, loc)
}

// optionalFloat converts a vendor numeric string; blanks and garbage are absent
func optionalFloat(s string) null.Float {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(d.InexactFloat64())
}

// optionalInt converts a vendor integer string; blanks and garbage are absent
func optionalInt(s string) null.Int {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(d.IntPart())
}
