package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/events"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/Noviath61/finsight/internal/symbols"
	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Placeholder is rendered for any absent value
const Placeholder = "—"

// QuoteService assembles live price and quote snapshots
type QuoteService struct {
	source    QuoteSource
	index     *symbols.Index
	cache     QuoteStore
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuoteService creates a new quote service. cache and publisher may be nil.
func NewQuoteService(source QuoteSource, index *symbols.Index, cache QuoteStore, publisher events.Publisher, logger *zap.Logger) *QuoteService {
	return &QuoteService{
		source:    source,
		index:     index,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// NormalizeSymbol trims and upper-cases a user supplied ticker
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// GetStock fetches the price and quote snapshot for symbol concurrently and
// joins them. A missing price is ErrSymbolNotFound; a missing snapshot only
// sets a warning on the result.
func (s *QuoteService) GetStock(ctx context.Context, symbol string) (*model.StockQuote, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, apperr.ErrEmptySymbol
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, symbol)
		if err != nil {
			s.logger.Warn("Quote cache read failed", zap.String("symbol", symbol), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	var (
		price    decimal.Decimal
		snapshot model.QuoteSnapshot
		quoteErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.source.GetPrice(gctx, symbol)
		if err != nil {
			return fmt.Errorf("failed to get price for %s: %w", symbol, err)
		}
		price = p
		return nil
	})
	g.Go(func() error {
		// a failed snapshot never fails the lookup
		snapshot, quoteErr = s.source.GetQuote(gctx, symbol)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Info("Stock lookup failed", zap.String("symbol", symbol), zap.Error(err))
		return nil, err
	}

	quote := &model.StockQuote{
		Symbol:    symbol,
		Price:     price,
		Quote:     snapshot,
		FetchedAt: s.now().UTC(),
	}
	if rec, ok := s.index.Lookup(symbol); ok {
		quote.CompanyName = rec.CompanyName
	}
	if quoteErr != nil || snapshot.IsEmpty() {
		if quoteErr != nil {
			s.logger.Warn("Quote snapshot unavailable", zap.String("symbol", symbol), zap.Error(quoteErr))
		}
		quote.Quote = model.QuoteSnapshot{}
		quote.Warning = apperr.Message(apperr.ErrPartialData)
	}
	quote.Display = RenderQuote(quote.Price, quote.Quote)

	if s.cache != nil {
		if err := s.cache.Set(ctx, quote); err != nil {
			s.logger.Warn("Quote cache write failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	events.Emit(s.publisher, s.logger, events.TopicLookups, symbol, events.Event{
		Type:   events.TypeQuoteFetched,
		Symbol: symbol,
	})

	return quote, nil
}

// RenderQuote formats a price and snapshot for display
func RenderQuote(price decimal.Decimal, q model.QuoteSnapshot) model.QuoteDisplay {
	return model.QuoteDisplay{
		Price:         "$" + price.StringFixed(2),
		Open:          formatFloat(q.Open, 2),
		DayHigh:       formatFloat(q.DayHigh, 2),
		DayLow:        formatFloat(q.DayLow, 2),
		PreviousClose: formatFloat(q.PreviousClose, 2),
		Volume:        formatInt(q.Volume),
	}
}

func formatFloat(v null.Float, places int32) string {
	if !v.Valid {
		return Placeholder
	}
	return decimal.NewFromFloat(v.Float64).StringFixed(places)
}

func formatInt(v null.Int) string {
	if !v.Valid {
		return Placeholder
	}
	return humanize.Comma(v.Int64)
}
