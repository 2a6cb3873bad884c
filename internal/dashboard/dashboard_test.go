package dashboard

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/events"
	"github.com/Noviath61/finsight/internal/market"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/Noviath61/finsight/internal/symbols"
	"github.com/guregu/null/v5"
	"go.uber.org/zap"
)

func TestStateTransitions(t *testing.T) {
	s := NewState()
	if s.Granularity != market.Range5D || s.ActiveView != ViewChart {
		t.Fatalf("NewState() = %+v", s)
	}

	s = s.Type(" aaplxyz")
	if s.SelectedSymbol != "AAPLX" {
		t.Errorf("SelectedSymbol = %q, want AAPLX", s.SelectedSymbol)
	}

	s = s.Type("aapl").Confirm("")
	if !s.Pending || s.Key.Symbol != "AAPL" || s.Key.Seq != 1 {
		t.Fatalf("Confirm() = %+v", s)
	}
	key := s.Key

	quote := &model.StockQuote{Symbol: "AAPL", CompanyName: "Apple Inc."}
	s, ok := s.Resolve(key, Result{Quote: quote, Chart: &model.Chart{Symbol: "AAPL"}})
	if !ok {
		t.Fatal("Resolve() with current key was discarded")
	}
	if s.ConfirmedSymbol != "AAPL" || s.CompanyName != "Apple Inc." || s.Pending || s.ErrorKind != apperr.KindNone {
		t.Errorf("resolved state = %+v", s)
	}

	if _, ok := s.Resolve(key, Result{}); ok {
		t.Error("second Resolve() with a settled key was applied")
	}

	s = s.SwitchView(ViewFundamentals)
	if s.ActiveView != ViewFundamentals || s.Quote == nil {
		t.Errorf("SwitchView() = %+v", s)
	}
}

func TestStateStaleResultsDiscarded(t *testing.T) {
	s := NewState().Confirm("AAPL")
	old := s.Key
	s = s.Confirm("MSFT")

	next, ok := s.Resolve(old, Result{Quote: &model.StockQuote{Symbol: "AAPL"}})
	if ok || next.Quote != nil {
		t.Errorf("stale Resolve() applied: %+v", next)
	}
	next, ok = s.Fail(old, apperr.ErrTransport)
	if ok || next.ErrorKind != apperr.KindNone {
		t.Errorf("stale Fail() applied: %+v", next)
	}
}

func TestStateFailureClearsStock(t *testing.T) {
	s := NewState().Confirm("AAPL")
	s, _ = s.Resolve(s.Key, Result{Quote: &model.StockQuote{Symbol: "AAPL"}, Chart: &model.Chart{}})

	s = s.Confirm("ZZZZ")
	s, ok := s.Fail(s.Key, apperr.ErrSymbolNotFound)
	if !ok {
		t.Fatal("Fail() was discarded")
	}
	if s.Quote != nil || s.Chart != nil || s.ConfirmedSymbol != "" {
		t.Errorf("state still shows a stock: %+v", s)
	}
	if s.ErrorKind != apperr.KindSymbolNotFound || s.Message != "Stock not found." {
		t.Errorf("error = %s %q", s.ErrorKind, s.Message)
	}
}

func TestStateChartErrorKeepsQuote(t *testing.T) {
	s := NewState().Confirm("AAPL")
	chartErr := fmt.Errorf("%w: %v", apperr.ErrChartUnavailable, apperr.ErrTransport)

	s, ok := s.Resolve(s.Key, Result{Quote: &model.StockQuote{Symbol: "AAPL"}, ChartErr: chartErr})
	if !ok {
		t.Fatal("Resolve() was discarded")
	}
	if s.Quote == nil || s.ConfirmedSymbol != "AAPL" || s.Chart != nil {
		t.Errorf("state = %+v", s)
	}
	if s.ErrorKind != apperr.KindChartUnavailable {
		t.Errorf("ErrorKind = %q, want %q", s.ErrorKind, apperr.KindChartUnavailable)
	}
}

func TestStateEmptyConfirm(t *testing.T) {
	s := NewState().Confirm("AAPL")
	s, _ = s.Resolve(s.Key, Result{Quote: &model.StockQuote{Symbol: "AAPL"}})

	s = s.Type("").Confirm("  ")
	if s.Pending || s.Quote != nil {
		t.Errorf("empty Confirm() = %+v", s)
	}
	if s.Message != "Please enter a stock ticker symbol." {
		t.Errorf("Message = %q", s.Message)
	}
}

func TestStatePartialDataWarning(t *testing.T) {
	s := NewState().Confirm("AAPL")
	s, _ = s.Resolve(s.Key, Result{Quote: &model.StockQuote{Symbol: "AAPL", Warning: "Quote details unavailable."}})
	if s.ErrorKind != apperr.KindPartialData || s.Message != "Quote details unavailable." {
		t.Errorf("state = %s %q", s.ErrorKind, s.Message)
	}
	if s.Quote == nil {
		t.Error("price should still be shown")
	}
}

func TestStateGranularityWhilePending(t *testing.T) {
	s := NewState().Confirm("AAPL")
	s, _ = s.Resolve(s.Key, Result{Quote: &model.StockQuote{Symbol: "AAPL"}})

	s = s.Confirm("MSFT").SelectGranularity(market.Range1Y)
	if s.Key.Symbol != "MSFT" || s.Key.Granularity != market.Range1Y {
		t.Errorf("Key = %+v, want MSFT/1y", s.Key)
	}
	if !s.NeedsQuote() {
		t.Error("pending lookup of a new symbol needs its quote")
	}

	idle := NewState().SelectGranularity(market.OneHour)
	if idle.Pending || idle.Granularity != market.OneHour {
		t.Errorf("SelectGranularity() without symbol = %+v", idle)
	}
}

type gatedFetcher struct {
	mu          sync.Mutex
	gates       map[string]chan struct{}
	quoteCalls  int
	chartCalls  int
	chartErr    error
	granularity market.Granularity
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{gates: make(map[string]chan struct{})}
}

func (f *gatedFetcher) gate(symbol string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gates[symbol]
	if !ok {
		g = make(chan struct{})
		f.gates[symbol] = g
	}
	return g
}

func (f *gatedFetcher) GetStock(ctx context.Context, symbol string) (*model.StockQuote, error) {
	f.mu.Lock()
	f.quoteCalls++
	f.mu.Unlock()

	if symbol == "NOPE" {
		return nil, apperr.ErrSymbolNotFound
	}
	// deliberately ignores ctx so superseded results still arrive
	<-f.gate(symbol)
	return &model.StockQuote{Symbol: symbol, CompanyName: symbol + " Corp"}, nil
}

func (f *gatedFetcher) GetChart(ctx context.Context, symbol string, g market.Granularity) (*model.Chart, error) {
	f.mu.Lock()
	f.chartCalls++
	f.granularity = g
	err := f.chartErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &model.Chart{Symbol: symbol, Granularity: g.String()}, nil
}

func newTestController(f *gatedFetcher) *Controller {
	ix := symbols.Load([]model.RawSymbol{
		{Symbol: "AAPL", CompanyName: "Apple Inc.", ExchangeShortName: "NASDAQ", MarketCap: null.FloatFrom(3e12)},
		{Symbol: "AMZN", CompanyName: "Amazon.com Inc.", ExchangeShortName: "NASDAQ", MarketCap: null.FloatFrom(2e12)},
	})
	return NewController("test", Deps{
		Quotes:    f,
		Charts:    f,
		Index:     ix,
		Publisher: events.Nop{},
		Logger:    zap.NewNop(),
	})
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not finish")
	}
}

func TestControllerDiscardsSupersededFetch(t *testing.T) {
	f := newGatedFetcher()
	c := newTestController(f)

	_, first := c.Confirm("AAPL")
	st, second := c.Confirm("MSFT")
	if !st.Pending || st.Key.Symbol != "MSFT" {
		t.Fatalf("Confirm() = %+v", st)
	}

	close(f.gate("MSFT"))
	wait(t, second)
	close(f.gate("AAPL"))
	wait(t, first)

	st = c.State()
	if st.ConfirmedSymbol != "MSFT" || st.Quote == nil || st.Quote.Symbol != "MSFT" {
		t.Errorf("state = %+v, want MSFT", st)
	}
	if st.CompanyName != "MSFT Corp" {
		t.Errorf("CompanyName = %q", st.CompanyName)
	}
}

func TestControllerFailureAndGranularity(t *testing.T) {
	f := newGatedFetcher()
	close(f.gate("AAPL"))
	c := newTestController(f)

	_, done := c.Confirm("AAPL")
	wait(t, done)

	_, done = c.SelectGranularity(market.Range1Y)
	wait(t, done)
	if f.quoteCalls != 1 {
		t.Errorf("quote calls = %d, want 1", f.quoteCalls)
	}
	st := c.State()
	if st.Chart == nil || st.Chart.Granularity != "1y" || st.Quote == nil {
		t.Errorf("state after granularity change = %+v", st)
	}

	_, done = c.Confirm("NOPE")
	wait(t, done)
	st = c.State()
	if st.ErrorKind != apperr.KindSymbolNotFound || st.Quote != nil || st.Chart != nil {
		t.Errorf("state after failure = %+v", st)
	}
}

func TestControllerChartFailureKeepsPrice(t *testing.T) {
	f := newGatedFetcher()
	f.chartErr = apperr.ErrTransport
	close(f.gate("AAPL"))
	c := newTestController(f)

	_, done := c.Confirm("AAPL")
	wait(t, done)

	st := c.State()
	if st.Quote == nil || st.ConfirmedSymbol != "AAPL" {
		t.Fatalf("state after chart failure = %+v, want the AAPL quote kept", st)
	}
	if st.Chart != nil || st.ErrorKind != apperr.KindChartUnavailable || st.Message != "Chart data unavailable." {
		t.Errorf("chart failure state = chart %v, kind %q, message %q", st.Chart, st.ErrorKind, st.Message)
	}

	f.mu.Lock()
	f.chartErr = nil
	f.mu.Unlock()
	_, done = c.SelectGranularity(market.Range30D)
	wait(t, done)
	if st = c.State(); st.Chart == nil || st.ErrorKind != apperr.KindNone {
		t.Errorf("state after recovery = %+v", st)
	}

	f.mu.Lock()
	f.chartErr = apperr.ErrTransport
	f.mu.Unlock()
	_, done = c.SelectGranularity(market.Range1Y)
	wait(t, done)
	st = c.State()
	if st.Quote == nil || st.Quote.Symbol != "AAPL" || st.Chart != nil {
		t.Errorf("granularity failure state = %+v, want price kept and chart cleared", st)
	}
	if f.quoteCalls != 1 {
		t.Errorf("quote calls = %d, want 1", f.quoteCalls)
	}
}

func TestControllerTypeSuggests(t *testing.T) {
	c := newTestController(newGatedFetcher())

	st, matches := c.Type("a")
	if st.SelectedSymbol != "A" {
		t.Errorf("SelectedSymbol = %q", st.SelectedSymbol)
	}
	if len(matches) != 2 || matches[0].Symbol != "AAPL" {
		t.Errorf("matches = %+v", matches)
	}

	if _, matches := c.Type(""); len(matches) != 0 {
		t.Errorf("empty query matches = %+v", matches)
	}
}

func TestRegistryEviction(t *testing.T) {
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(Deps{Index: symbols.Empty()}, time.Minute, zap.NewNop())
	r.now = func() time.Time { return now }

	c1, id := r.Get("")
	if id == "" {
		t.Fatal("Get() returned empty session ID")
	}
	c2, id2 := r.Get(id)
	if c1 != c2 || id2 != id {
		t.Error("Get() with a known ID returned a different session")
	}
	if _, other := r.Get("unknown"); other == "unknown" {
		t.Error("Get() adopted a client supplied ID")
	}

	now = now.Add(2 * time.Minute)
	c3, id3 := r.Get(id)
	if c3 == c1 || id3 == id {
		t.Error("idle session was not evicted")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestParseView(t *testing.T) {
	if v, ok := ParseView("fundamentals"); !ok || v != ViewFundamentals {
		t.Errorf("ParseView(fundamentals) = %q, %v", v, ok)
	}
	if _, ok := ParseView("news"); ok {
		t.Error("ParseView(news) accepted")
	}
}

