package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheConfig holds configuration for the cache middleware
type CacheConfig struct {
	Duration  time.Duration
	PrefixKey string
}

// RedisCache creates middleware caching successful GET responses in Redis
func RedisCache(redisClient *redis.Client, config CacheConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || config.Duration <= 0 || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := generateCacheKey(c, config.PrefixKey)

		cachedResponse, err := redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil {
			logger.Debug("Cache hit",
				zap.String("path", c.Request.URL.Path),
				zap.String("cache_key", cacheKey))

			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", cachedResponse)
			c.Abort()
			return
		}
		if err != redis.Nil {
			logger.Warn("Cache read failed", zap.Error(err), zap.String("cache_key", cacheKey))
		}

		// Capture the response
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		// Only cache successful responses
		if c.Writer.Status() != http.StatusOK {
			return
		}
		if err := redisClient.Set(ctx, cacheKey, writer.body.Bytes(), config.Duration).Err(); err != nil {
			logger.Error("Failed to set cache",
				zap.Error(err),
				zap.String("cache_key", cacheKey))
			return
		}
		logger.Debug("Cache set",
			zap.String("path", c.Request.URL.Path),
			zap.String("cache_key", cacheKey),
			zap.Duration("duration", config.Duration))
	}
}

// responseWriter captures the response body for caching
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write captures the response for caching
func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// generateCacheKey hashes the path and query into a cache key
func generateCacheKey(c *gin.Context, prefix string) string {
	hash := sha256.New()
	io.WriteString(hash, c.Request.URL.Path)
	if query := c.Request.URL.RawQuery; query != "" {
		io.WriteString(hash, "?"+query)
	}
	return prefix + ":http:" + hex.EncodeToString(hash.Sum(nil))
}
