package handler

import (
	"net/http"

	"github.com/Noviath61/finsight/internal/service"

	"github.com/gin-gonic/gin"
)

// MarketHandler handles market session requests
type MarketHandler struct {
	marketService *service.MarketService
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(marketService *service.MarketService) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

// Status reports whether the market is open
// GET /api/v1/market/status
func (h *MarketHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.marketService.Status())
}

// Granularities lists the supported chart granularities
// GET /api/v1/granularities
func (h *MarketHandler) Granularities(c *gin.Context) {
	all, def := h.marketService.Granularities()
	c.JSON(http.StatusOK, gin.H{
		"granularities": all,
		"default":       def,
	})
}
