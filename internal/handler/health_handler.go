package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// Pinger is satisfied by *sqlx.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports dependency status
type HealthHandler struct {
	db           Pinger
	redisClient  *redis.Client
	kafkaEnabled bool
	symbolCount  func() int
}

// NewHealthHandler creates a new health handler. db and redisClient may be nil.
func NewHealthHandler(db Pinger, redisClient *redis.Client, kafkaEnabled bool, symbolCount func() int) *HealthHandler {
	return &HealthHandler{
		db:           db,
		redisClient:  redisClient,
		kafkaEnabled: kafkaEnabled,
		symbolCount:  symbolCount,
	}
}

// Health reports whether the service and its stores are reachable
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	database := h.db != nil && h.db.PingContext(ctx) == nil
	if h.db != nil && !database {
		status = "degraded"
	}
	cache := h.redisClient != nil && h.redisClient.Ping(ctx).Err() == nil

	body := gin.H{
		"status":   status,
		"database": database,
		"redis":    cache,
		"kafka":    h.kafkaEnabled,
	}
	if h.symbolCount != nil {
		body["symbols"] = h.symbolCount()
	}
	c.JSON(http.StatusOK, body)
}
