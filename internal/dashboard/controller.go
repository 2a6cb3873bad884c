package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/events"
	"github.com/Noviath61/finsight/internal/market"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/Noviath61/finsight/internal/symbols"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchTimeout bounds one keyed fetch
const DefaultFetchTimeout = 15 * time.Second

// QuoteFetcher fetches a live quote
type QuoteFetcher interface {
	GetStock(ctx context.Context, symbol string) (*model.StockQuote, error)
}

// ChartFetcher fetches a chart
type ChartFetcher interface {
	GetChart(ctx context.Context, symbol string, g market.Granularity) (*model.Chart, error)
}

// Deps are the collaborators shared by every session controller
type Deps struct {
	Quotes       QuoteFetcher
	Charts       ChartFetcher
	Index        *symbols.Index
	Publisher    events.Publisher
	FetchTimeout time.Duration
	Logger       *zap.Logger
}

// Controller owns one session's State. A new selection cancels the fetch
// in flight, and results are applied only under the key they were issued for.
type Controller struct {
	id   string
	deps Deps

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewController creates a controller for session id
func NewController(id string, deps Deps) *Controller {
	if deps.FetchTimeout <= 0 {
		deps.FetchTimeout = DefaultFetchTimeout
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Controller{
		id:    id,
		deps:  deps,
		state: NewState(),
	}
}

// ID returns the session ID
func (c *Controller) ID() string {
	return c.id
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Type records the typed text and returns the matching suggestions
func (c *Controller) Type(query string) (State, []model.SymbolRecord) {
	c.mu.Lock()
	c.state = c.state.Type(query)
	st := c.state
	c.mu.Unlock()

	return st, c.deps.Index.Match(st.SelectedSymbol)
}

// Confirm looks up symbol (or the typed text). The returned channel is
// closed when the fetch it started has been applied or discarded.
func (c *Controller) Confirm(symbol string) (State, <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = c.state.Confirm(symbol)
	if !c.state.Pending {
		c.stop()
		return c.state, closed()
	}

	events.Emit(c.deps.Publisher, c.deps.Logger, events.TopicLookups, c.state.Key.Symbol, events.Event{
		Type:        events.TypeSymbolConfirmed,
		Symbol:      c.state.Key.Symbol,
		Granularity: c.state.Key.Granularity.String(),
		SessionID:   c.id,
	})
	return c.state, c.start(true)
}

// SelectGranularity changes the granularity, refetching the chart of the
// confirmed symbol.
func (c *Controller) SelectGranularity(g market.Granularity) (State, <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = c.state.SelectGranularity(g)
	if !c.state.Pending {
		return c.state, closed()
	}
	return c.state, c.start(c.state.NeedsQuote())
}

// SwitchView changes the active panel
func (c *Controller) SwitchView(v View) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = c.state.SwitchView(v)
	return c.state
}

// Close cancels any fetch in flight
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stop()
}

// stop cancels the fetch in flight; callers hold mu
func (c *Controller) stop() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// start cancels the previous fetch and issues one under the current key;
// callers hold mu
func (c *Controller) start(withQuote bool) <-chan struct{} {
	c.stop()

	ctx, cancel := context.WithTimeout(context.Background(), c.deps.FetchTimeout)
	c.cancel = cancel
	done := make(chan struct{})

	go c.fetch(ctx, cancel, c.state.Key, withQuote, done)
	return done
}

func (c *Controller) fetch(ctx context.Context, cancel context.CancelFunc, key SelectionKey, withQuote bool, done chan struct{}) {
	defer close(done)
	defer cancel()

	// Only a quote failure fails the selection. A chart failure leaves the
	// price in place.
	var r Result
	g, gctx := errgroup.WithContext(ctx)
	if withQuote {
		g.Go(func() error {
			q, err := c.deps.Quotes.GetStock(gctx, key.Symbol)
			r.Quote = q
			return transportOnTimeout(err)
		})
	}
	g.Go(func() error {
		ch, err := c.deps.Charts.GetChart(gctx, key.Symbol, key.Granularity)
		if err != nil {
			r.ChartErr = fmt.Errorf("%w: %v", apperr.ErrChartUnavailable, transportOnTimeout(err))
			return nil
		}
		r.Chart = ch
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	var applied bool
	if err != nil {
		c.state, applied = c.state.Fail(key, err)
	} else {
		c.state, applied = c.state.Resolve(key, r)
	}

	if !applied {
		c.deps.Logger.Debug("Discarded stale dashboard result",
			zap.String("session", c.id),
			zap.String("symbol", key.Symbol),
			zap.Uint64("seq", key.Seq))
		return
	}
	if err != nil {
		c.deps.Logger.Info("Dashboard lookup failed",
			zap.String("session", c.id),
			zap.String("symbol", key.Symbol),
			zap.Error(err))
	} else if r.ChartErr != nil {
		c.deps.Logger.Info("Dashboard chart failed",
			zap.String("session", c.id),
			zap.String("symbol", key.Symbol),
			zap.Error(r.ChartErr))
	}
}

func closed() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func transportOnTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", apperr.ErrTransport, err)
	}
	return err
}
