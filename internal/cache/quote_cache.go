package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Noviath61/finsight/internal/model"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// QuoteCache keeps recent live quotes in Redis
type QuoteCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewQuoteCache creates a quote cache. A nil client yields a cache that
// always misses.
func NewQuoteCache(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *QuoteCache {
	return &QuoteCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *QuoteCache) key(symbol string) string {
	return fmt.Sprintf("%s:quote:%s", c.prefix, symbol)
}

// Get returns the cached quote for symbol, or nil on a miss
func (c *QuoteCache) Get(ctx context.Context, symbol string) (*model.StockQuote, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.key(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quote from redis: %w", err)
	}

	var quote model.StockQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return &quote, nil
}

// Set stores quote under its symbol for the configured TTL
func (c *QuoteCache) Set(ctx context.Context, quote *model.StockQuote) error {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	if err := c.client.Set(ctx, c.key(quote.Symbol), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set quote in redis: %w", err)
	}

	c.logger.Debug("Quote cached", zap.String("symbol", quote.Symbol), zap.Duration("ttl", c.ttl))
	return nil
}
