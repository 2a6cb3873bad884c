package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Vendors   VendorsConfig
	Auth      AuthConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Directory DirectoryConfig
	Display   DisplayConfig
	Dashboard DashboardConfig
	Logging   LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port           string `validate:"required"`
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string `validate:"required"`
	Port            string `validate:"required"`
	User            string
	Password        string
	DBName          string `validate:"required"`
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection configuration. An empty URL disables Redis.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// KafkaConfig holds Kafka specific configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  string
	ClientID string
	Topics   map[string]string
}

// VendorsConfig holds the upstream market data and identity APIs
type VendorsConfig struct {
	FMP        VendorConfig
	TwelveData VendorConfig
	Parse      ParseConfig
}

// VendorConfig holds configuration for one vendor REST API
type VendorConfig struct {
	URL     string `validate:"required,url"`
	APIKey  string
	Timeout time.Duration
}

// ParseConfig holds Back4app / Parse REST configuration
type ParseConfig struct {
	URL        string `validate:"required,url"`
	AppID      string
	RESTAPIKey string
	Timeout    time.Duration
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Provider            string `validate:"oneof=parse local"`
	JWTSecret           string `validate:"required"`
	AccessTokenDuration time.Duration
}

// CacheConfig holds response and quote cache configuration
type CacheConfig struct {
	QuoteTTL  time.Duration
	ChartTTL  time.Duration
	PrefixKey string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
}

// DirectoryConfig controls the startup load of the symbol directory
type DirectoryConfig struct {
	Limit       int
	MaxRetries  uint64
	LoadTimeout time.Duration
}

// DisplayConfig controls how times are presented
type DisplayConfig struct {
	Timezone string
}

// DashboardConfig controls per-session dashboard state
type DashboardConfig struct {
	SessionTTL time.Duration
	CookieName string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override, e.g. VENDORS_FMP_APIKEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "120s")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:5173"})

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.dbname", "finsight")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "kafka:9092")
	v.SetDefault("kafka.clientID", "finsight")
	v.SetDefault("kafka.topics.lookups", "finsight-lookups")
	v.SetDefault("kafka.topics.auth", "finsight-auth-events")

	// Vendor defaults
	v.SetDefault("vendors.fmp.url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("vendors.fmp.timeout", "15s")
	v.SetDefault("vendors.twelveData.url", "https://api.twelvedata.com")
	v.SetDefault("vendors.twelveData.timeout", "10s")
	v.SetDefault("vendors.parse.url", "https://parseapi.back4app.com")
	v.SetDefault("vendors.parse.timeout", "10s")

	// Auth defaults
	v.SetDefault("auth.provider", "parse")
	v.SetDefault("auth.accessTokenDuration", "24h")

	// Cache defaults
	v.SetDefault("cache.quoteTTL", "15s")
	v.SetDefault("cache.chartTTL", "1m")
	v.SetDefault("cache.prefixKey", "finsight")

	// Rate limit defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.burstSize", 20)

	// Directory defaults
	v.SetDefault("directory.limit", 5035)
	v.SetDefault("directory.maxRetries", 3)
	v.SetDefault("directory.loadTimeout", "2m")

	// Display defaults
	v.SetDefault("display.timezone", "Local")

	// Dashboard defaults
	v.SetDefault("dashboard.sessionTTL", "30m")
	v.SetDefault("dashboard.cookieName", "finsight_session")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
