package handler

import (
	"net/http"

	"github.com/Noviath61/finsight/internal/model"
	"github.com/Noviath61/finsight/internal/symbols"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SymbolHandler handles symbol search requests
type SymbolHandler struct {
	index  *symbols.Index
	logger *zap.Logger
}

// NewSymbolHandler creates a new symbol handler
func NewSymbolHandler(index *symbols.Index, logger *zap.Logger) *SymbolHandler {
	return &SymbolHandler{
		index:  index,
		logger: logger,
	}
}

// Search returns up to five suggestions for a ticker prefix
// GET /api/v1/symbols/search?q=
func (h *SymbolHandler) Search(c *gin.Context) {
	query := c.Query("q")
	c.JSON(http.StatusOK, model.SymbolSearchResponse{
		Query:   query,
		Results: h.index.Match(query),
	})
}

// Count returns the number of indexed symbols
// GET /api/v1/symbols/count
func (h *SymbolHandler) Count(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.index.Len()})
}
