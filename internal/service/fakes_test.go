package service

import (
	"context"
	"sync"

	"github.com/Noviath61/finsight/internal/events"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/shopspring/decimal"
)

type fakeDirectory struct {
	mu      sync.Mutex
	calls   int
	errs    []error
	records []model.RawSymbol
}

func (f *fakeDirectory) GetStockScreener(ctx context.Context, limit int) ([]model.RawSymbol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= len(f.errs) && f.errs[f.calls-1] != nil {
		return nil, f.errs[f.calls-1]
	}
	return f.records, nil
}

type fakeSnapshot struct {
	saved   []model.RawSymbol
	stored  []model.RawSymbol
	loadErr error
}

// SaveDirectory and LoadDirectory fail on a done context like sqlx does
func (f *fakeSnapshot) SaveDirectory(ctx context.Context, records []model.RawSymbol) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.saved = records
	return nil
}

func (f *fakeSnapshot) LoadDirectory(ctx context.Context) ([]model.RawSymbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.stored, f.loadErr
}

// hangingDirectory blocks until the request context ends
type hangingDirectory struct{}

func (hangingDirectory) GetStockScreener(ctx context.Context, limit int) ([]model.RawSymbol, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakeQuotes struct {
	price    decimal.Decimal
	priceErr error
	quote    model.QuoteSnapshot
	quoteErr error

	mu    sync.Mutex
	calls int
}

func (f *fakeQuotes) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.price, f.priceErr
}

func (f *fakeQuotes) GetQuote(ctx context.Context, symbol string) (model.QuoteSnapshot, error) {
	return f.quote, f.quoteErr
}

type memoryQuoteStore struct {
	mu     sync.Mutex
	quotes map[string]*model.StockQuote
}

func (m *memoryQuoteStore) Get(ctx context.Context, symbol string) (*model.StockQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quotes[symbol], nil
}

func (m *memoryQuoteStore) Set(ctx context.Context, q *model.StockQuote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quotes == nil {
		m.quotes = make(map[string]*model.StockQuote)
	}
	m.quotes[q.Symbol] = q
	return nil
}

type fakeSeries struct {
	lastInterval string
	lastSize     int
	lastLimit    int
	points       []model.PricePoint
	err          error
}

func (f *fakeSeries) GetTimeSeries(ctx context.Context, symbol, interval string, outputSize int) ([]model.PricePoint, error) {
	f.lastInterval, f.lastSize = interval, outputSize
	return f.points, f.err
}

func (f *fakeSeries) GetHistoricalChart(ctx context.Context, symbol, interval string) ([]model.PricePoint, error) {
	f.lastInterval = interval
	return f.points, f.err
}

func (f *fakeSeries) GetDailyHistory(ctx context.Context, symbol string, limit int) ([]model.PricePoint, error) {
	f.lastInterval, f.lastLimit = "daily", limit
	return f.points, f.err
}

type fakeFundamentals struct {
	profile    *model.CompanyProfile
	metrics    *model.KeyMetricsTTM
	profileErr error
	metricsErr error
}

func (f *fakeFundamentals) GetProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	return f.profile, f.profileErr
}

func (f *fakeFundamentals) GetKeyMetricsTTM(ctx context.Context, symbol string) (*model.KeyMetricsTTM, error) {
	return f.metrics, f.metricsErr
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(ctx context.Context, topicKey, key string, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}
