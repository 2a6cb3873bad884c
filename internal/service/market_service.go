package service

import (
	"github.com/Noviath61/finsight/internal/market"
)

// MarketService reports the trading session status
type MarketService struct {
	clock *market.Clock
}

// NewMarketService creates a new market service
func NewMarketService(clock *market.Clock) *MarketService {
	return &MarketService{clock: clock}
}

// Status returns whether the market is open now
func (s *MarketService) Status() market.Status {
	return s.clock.Status()
}

// Granularities lists the supported granularities and the default
func (s *MarketService) Granularities() ([]market.Granularity, market.Granularity) {
	return market.All(), market.DefaultGranularity
}
