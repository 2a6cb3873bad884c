package handler

import (
	"time"

	"github.com/Noviath61/finsight/internal/config"
	"github.com/Noviath61/finsight/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Router bundles the handlers and middleware settings of the HTTP API
type Router struct {
	Symbols   *SymbolHandler
	Market    *MarketHandler
	Stocks    *StockHandler
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Health    *HealthHandler

	Tokens         middleware.TokenValidator
	Redis          *redis.Client
	RateLimit      config.RateLimitConfig
	ChartCacheTTL  time.Duration
	CachePrefix    string
	AllowedOrigins []string
	Logger         *zap.Logger
}

// Engine builds the gin engine with every route registered
func (r *Router) Engine() *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.Logger))
	router.Use(middleware.CORS(r.AllowedOrigins))
	if r.RateLimit.Enabled {
		if r.Redis != nil {
			router.Use(middleware.RedisRateLimit(r.Redis, r.RateLimit.RequestsPerMinute, r.Logger))
		} else {
			router.Use(middleware.RateLimit(r.RateLimit.RequestsPerMinute, r.RateLimit.BurstSize))
		}
	}

	router.GET("/health", r.Health.Health)

	requireAuth := middleware.AuthMiddleware(r.Tokens, r.Logger)
	optionalAuth := middleware.OptionalAuth(r.Tokens, r.Logger)
	chartCache := middleware.RedisCache(r.Redis, middleware.CacheConfig{
		Duration:  r.ChartCacheTTL,
		PrefixKey: r.CachePrefix,
	}, r.Logger)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/symbols/search", r.Symbols.Search)
		v1.GET("/symbols/count", r.Symbols.Count)
		v1.GET("/granularities", r.Market.Granularities)
		v1.GET("/market/status", r.Market.Status)

		stocks := v1.Group("/stocks/:symbol")
		{
			stocks.GET("", r.Stocks.GetStock)
			stocks.GET("/chart", chartCache, r.Stocks.GetChart)
			stocks.GET("/fundamentals", requireAuth, r.Stocks.GetFundamentals)
		}

		auth := v1.Group("/auth")
		{
			auth.POST("/signup", r.Auth.SignUp)
			auth.POST("/login", r.Auth.Login)
			auth.POST("/logout", requireAuth, r.Auth.Logout)
			auth.GET("/me", requireAuth, r.Auth.Me)
		}

		dash := v1.Group("/dashboard")
		dash.Use(optionalAuth)
		{
			dash.GET("", r.Dashboard.Get)
			dash.POST("/query", r.Dashboard.Query)
			dash.POST("/confirm", r.Dashboard.Confirm)
			dash.PUT("/granularity", r.Dashboard.SelectGranularity)
			dash.PUT("/view", r.Dashboard.SwitchView)
		}
	}

	return router
}
