package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/auth"
	"github.com/Noviath61/finsight/internal/cache"
	"github.com/Noviath61/finsight/internal/dashboard"
	"github.com/Noviath61/finsight/internal/events"
	"github.com/Noviath61/finsight/internal/market"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/Noviath61/finsight/internal/service"
	"github.com/Noviath61/finsight/internal/symbols"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVendor struct{}

func (stubVendor) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	switch symbol {
	case "AAPL":
		return decimal.RequireFromString("190.1"), nil
	case "DOWN":
		return decimal.Zero, apperr.ErrTransport
	}
	return decimal.Zero, apperr.ErrSymbolNotFound
}

func (stubVendor) GetQuote(ctx context.Context, symbol string) (model.QuoteSnapshot, error) {
	return model.QuoteSnapshot{Open: null.FloatFrom(189)}, nil
}

func (stubVendor) GetTimeSeries(ctx context.Context, symbol, interval string, outputSize int) ([]model.PricePoint, error) {
	base := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, outputSize)
	for i := range points {
		points[i] = model.PricePoint{Time: base.AddDate(0, 0, -i), Close: decimal.NewFromInt(int64(200 - i))}
	}
	return points, nil
}

func (stubVendor) GetHistoricalChart(ctx context.Context, symbol, interval string) ([]model.PricePoint, error) {
	return nil, nil
}

func (stubVendor) GetDailyHistory(ctx context.Context, symbol string, limit int) ([]model.PricePoint, error) {
	return nil, nil
}

func (stubVendor) GetProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	return &model.CompanyProfile{CompanyName: "Apple Inc.", MktCap: null.FloatFrom(3e12)}, nil
}

func (stubVendor) GetKeyMetricsTTM(ctx context.Context, symbol string) (*model.KeyMetricsTTM, error) {
	return nil, nil
}

type stubProvider struct{}

func (stubProvider) SignUp(ctx context.Context, creds model.Credentials) (*auth.Session, error) {
	return nil, apperr.ErrUsernameTaken
}

func (stubProvider) LogIn(ctx context.Context, creds model.Credentials) (*auth.Session, error) {
	if creds.Password != "correct-horse" {
		return nil, apperr.ErrInvalidCredentials
	}
	return &auth.Session{User: model.User{ID: "u1", Username: creds.Username}, Token: "r:1"}, nil
}

func (stubProvider) CurrentSession(ctx context.Context, token string) (*auth.Session, error) {
	return &auth.Session{User: model.User{ID: "u1", Username: "alice"}, Token: token}, nil
}

func (stubProvider) LogOut(ctx context.Context, token string) error {
	return nil
}

type unreachableProvider struct {
	stubProvider
}

func (unreachableProvider) SignUp(ctx context.Context, creds model.Credentials) (*auth.Session, error) {
	return nil, errors.New("dial tcp 10.0.0.5:5432: connection refused")
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	logger := zap.NewNop()
	ix := symbols.Load([]model.RawSymbol{
		{Symbol: "AAPL", CompanyName: "Apple Inc.", ExchangeShortName: "NASDAQ", MarketCap: null.FloatFrom(3e12)},
		{Symbol: "AAPLR1", CompanyName: "Apple Preferred", ExchangeShortName: "NASDAQ", MarketCap: null.FloatFrom(1e6)},
	})
	vendor := stubVendor{}

	quotes := service.NewQuoteService(vendor, ix, nil, events.Nop{}, logger)
	charts := service.NewChartService(vendor, vendor, events.Nop{}, logger)
	fundamentals := service.NewFundamentalsService(vendor, logger)
	tokens := auth.NewTokenService("test-secret", time.Hour, cache.NewRevocationList(nil, "test"), logger)
	authService := auth.NewService(stubProvider{}, tokens, events.Nop{}, logger)
	registry := dashboard.NewRegistry(dashboard.Deps{
		Quotes: quotes,
		Charts: charts,
		Index:  ix,
		Logger: logger,
	}, time.Hour, logger)

	r := &Router{
		Symbols:   NewSymbolHandler(ix, logger),
		Market:    NewMarketHandler(service.NewMarketService(market.NewClock(time.UTC))),
		Stocks:    NewStockHandler(quotes, charts, fundamentals, logger),
		Auth:      NewAuthHandler(authService, logger),
		Dashboard: NewDashboardHandler(registry, fundamentals, "", time.Hour, logger),
		Health:    NewHealthHandler(nil, nil, false, ix.Len),
		Tokens:    tokens,
		Logger:    logger,
	}
	return r.Engine()
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestSymbolSearch(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/symbols/search?q=aapl", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp model.SymbolSearchResponse
	decode(t, w, &resp)
	if len(resp.Results) != 1 || resp.Results[0].Symbol != "AAPL" {
		t.Errorf("results = %+v, want only AAPL", resp.Results)
	}

	w = do(t, r, http.MethodGet, "/api/v1/symbols/search", nil, nil)
	decode(t, w, &resp)
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("empty query results = %#v, want []", resp.Results)
	}
}

func TestGetStockErrorsAreDisplayStrings(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		path    string
		status  int
		message string
		kind    apperr.ErrorKind
	}{
		{"/api/v1/stocks/ZZZZ", http.StatusNotFound, "Stock not found.", apperr.KindSymbolNotFound},
		{"/api/v1/stocks/DOWN", http.StatusBadGateway, "Error fetching data", apperr.KindTransport},
		{"/api/v1/stocks/AAPL/chart?granularity=2w", http.StatusBadRequest, "Unsupported granularity.", apperr.KindInvalidGranularity},
	}

	for _, tt := range tests {
		w := do(t, r, http.MethodGet, tt.path, nil, nil)
		if w.Code != tt.status {
			t.Errorf("%s status = %d, want %d", tt.path, w.Code, tt.status)
		}
		var body struct {
			Error string           `json:"error"`
			Kind  apperr.ErrorKind `json:"kind"`
		}
		decode(t, w, &body)
		if body.Error != tt.message || body.Kind != tt.kind {
			t.Errorf("%s body = %+v", tt.path, body)
		}
	}
}

func TestGetStockAndChart(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/stocks/aapl", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var quote model.StockQuote
	decode(t, w, &quote)
	if quote.Display.Price != "$190.10" || quote.CompanyName != "Apple Inc." {
		t.Errorf("quote = %+v", quote)
	}

	w = do(t, r, http.MethodGet, "/api/v1/stocks/AAPL/chart?granularity=30d", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("chart status = %d", w.Code)
	}
	var chart model.Chart
	decode(t, w, &chart)
	if len(chart.Points) != 30 || len(chart.Ticks) != 6 {
		t.Errorf("chart has %d points and %d ticks, want 30 and 6", len(chart.Points), len(chart.Ticks))
	}
	if chart.Trend != model.TrendUp {
		t.Errorf("Trend = %q, want up", chart.Trend)
	}
}

func TestFundamentalsRequireLogin(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/stocks/AAPL/fundamentals", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/v1/auth/login", model.Credentials{Username: "alice", Password: "wrong-horse"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/v1/auth/login", model.Credentials{Username: "alice", Password: "correct-horse"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	var token model.TokenResponse
	decode(t, w, &token)
	bearer := http.Header{"Authorization": {"Bearer " + token.AccessToken}}

	w = do(t, r, http.MethodGet, "/api/v1/stocks/AAPL/fundamentals", nil, bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("fundamentals status = %d: %s", w.Code, w.Body.String())
	}
	var f model.Fundamentals
	decode(t, w, &f)
	if f.KeyMetrics.MarketCap != "$3,000,000,000,000" {
		t.Errorf("MarketCap = %q", f.KeyMetrics.MarketCap)
	}

	w = do(t, r, http.MethodPost, "/api/v1/auth/logout", nil, bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	w = do(t, r, http.MethodGet, "/api/v1/auth/me", nil, bearer)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d, want 401", w.Code)
	}
}

func TestSignUpFailureMessage(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/auth/signup", model.Credentials{Username: "alice", Password: "secret1"}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] != "Signup failed. Username might already exist." {
		t.Errorf("error = %q", body["error"])
	}

	w = do(t, r, http.MethodPost, "/api/v1/auth/signup", map[string]string{"username": "al"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid body status = %d, want 400", w.Code)
	}
}

func TestSignUpInternalErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	tokens := auth.NewTokenService("test-secret", time.Hour, cache.NewRevocationList(nil, "test"), logger)
	h := NewAuthHandler(auth.NewService(unreachableProvider{}, tokens, events.Nop{}, logger), logger)

	r := gin.New()
	r.POST("/signup", h.SignUp)

	w := do(t, r, http.MethodPost, "/signup", model.Credentials{Username: "alice", Password: "secret1"}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if n := logs.FilterLevelExact(zapcore.ErrorLevel).FilterMessage("signup failed").Len(); n != 1 {
		t.Errorf("error logs = %d, want 1", n)
	}
}

func TestDashboardFlow(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/dashboard", nil, nil)
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != DefaultSessionCookie {
		t.Fatalf("cookies = %+v, want session cookie", cookies)
	}
	session := http.Header{"Cookie": {cookies[0].Name + "=" + cookies[0].Value}}

	type dashboardBody struct {
		State       dashboard.State      `json:"state"`
		Suggestions []model.SymbolRecord `json:"suggestions"`
	}
	var resp dashboardBody

	w = do(t, r, http.MethodPost, "/api/v1/dashboard/query", map[string]string{"query": "aa"}, session)
	resp = dashboardBody{}
	decode(t, w, &resp)
	if len(resp.Suggestions) != 1 || resp.State.SelectedSymbol != "AA" {
		t.Errorf("query response = %+v", resp)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("existing session was issued a new cookie")
	}

	w = do(t, r, http.MethodPost, "/api/v1/dashboard/confirm", map[string]string{"symbol": "AAPL"}, session)
	resp = dashboardBody{}
	decode(t, w, &resp)
	if resp.State.ConfirmedSymbol != "AAPL" || resp.State.Quote == nil || resp.State.Chart == nil {
		t.Fatalf("confirm state = %+v", resp.State)
	}
	if resp.State.Granularity != market.Range5D || len(resp.State.Chart.Points) != 5 {
		t.Errorf("default chart = %s with %d points", resp.State.Granularity, len(resp.State.Chart.Points))
	}

	w = do(t, r, http.MethodPut, "/api/v1/dashboard/granularity", map[string]string{"granularity": "3m"}, session)
	resp = dashboardBody{}
	decode(t, w, &resp)
	if resp.State.Chart == nil || len(resp.State.Chart.Points) != 90 {
		t.Errorf("granularity change state = %+v", resp.State)
	}

	w = do(t, r, http.MethodPut, "/api/v1/dashboard/view", map[string]string{"view": "fundamentals"}, session)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous fundamentals view status = %d, want 401", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/v1/dashboard/confirm", map[string]string{"symbol": "ZZZZ"}, session)
	resp = dashboardBody{}
	decode(t, w, &resp)
	if resp.State.Message != "Stock not found." || resp.State.Quote != nil {
		t.Errorf("failed confirm state = %+v", resp.State)
	}
}

func TestMarketAndHealth(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/market/status", nil, nil)
	var st market.Status
	decode(t, w, &st)
	if st.Label != "Market is open" && st.Label != "Market is closed" {
		t.Errorf("Label = %q", st.Label)
	}

	w = do(t, r, http.MethodGet, "/api/v1/granularities", nil, nil)
	var g struct {
		Granularities []string `json:"granularities"`
		Default       string   `json:"default"`
	}
	decode(t, w, &g)
	if g.Default != "5d" || len(g.Granularities) != 12 {
		t.Errorf("granularities = %+v", g)
	}

	w = do(t, r, http.MethodGet, "/health", nil, nil)
	var h map[string]interface{}
	decode(t, w, &h)
	if h["status"] != "healthy" || h["symbols"] != float64(2) {
		t.Errorf("health = %v", h)
	}
}
