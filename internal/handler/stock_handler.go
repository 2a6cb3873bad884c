package handler

import (
	"net/http"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/market"
	"github.com/Noviath61/finsight/internal/service"
	"github.com/Noviath61/finsight/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StockHandler handles quote, chart and fundamentals requests
type StockHandler struct {
	quoteService        *service.QuoteService
	chartService        *service.ChartService
	fundamentalsService *service.FundamentalsService
	logger              *zap.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(
	quoteService *service.QuoteService,
	chartService *service.ChartService,
	fundamentalsService *service.FundamentalsService,
	logger *zap.Logger,
) *StockHandler {
	return &StockHandler{
		quoteService:        quoteService,
		chartService:        chartService,
		fundamentalsService: fundamentalsService,
		logger:              logger,
	}
}

// GetStock returns the live price and quote snapshot
// GET /api/v1/stocks/:symbol
func (h *StockHandler) GetStock(c *gin.Context) {
	quote, err := h.quoteService.GetStock(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.logFailure("Failed to get stock", c, err)
		utils.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// GetChart returns the chart for a granularity
// GET /api/v1/stocks/:symbol/chart?granularity=
func (h *StockHandler) GetChart(c *gin.Context) {
	g, err := market.Parse(c.Query("granularity"))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	chart, err := h.chartService.GetChart(c.Request.Context(), c.Param("symbol"), g)
	if err != nil {
		h.logFailure("Failed to get chart", c, err)
		utils.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, chart)
}

// GetFundamentals returns the fundamentals panel
// GET /api/v1/stocks/:symbol/fundamentals
func (h *StockHandler) GetFundamentals(c *gin.Context) {
	f, err := h.fundamentalsService.Get(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.logFailure("Failed to get fundamentals", c, err)
		utils.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, f)
}

// logFailure logs transport and internal failures; expected lookups misses stay quiet
func (h *StockHandler) logFailure(msg string, c *gin.Context, err error) {
	switch apperr.Kind(err) {
	case apperr.KindTransport, apperr.KindFundamentals, apperr.KindInternal:
		h.logger.Error(msg, zap.String("symbol", c.Param("symbol")), zap.Error(err))
	}
}
