package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultServerPort      = 3000
	DefaultShutdownTimeout = 10 * time.Second

	DefaultAIMode      = "proxy"
	DefaultAIProvider  = "openai"
	DefaultAIBaseURL   = "https://api.openai.com/v1"
	DefaultAIModel     = "gpt-3.5-turbo"
	DefaultAIMaxTokens = 500
	DefaultAITimeout   = 30 * time.Second
	DefaultGatewayURL  = "http://localhost:3000"

	DefaultRateLimitBackend  = "memory"
	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 15 * time.Minute
	DefaultRedisAddr         = "localhost:6379"

	DefaultDBPath = "platepal.db"

	DefaultRecipesBaseURL = "https://www.themealdb.com/api/json/v1/1"
	DefaultRecipesTimeout = 30 * time.Second
)

var defaults = map[string]any{
	"log.level":  DefaultLogLevel,
	"log.format": DefaultLogFormat,

	"server.port":             DefaultServerPort,
	"server.shutdown_timeout": DefaultShutdownTimeout,

	"ai.mode":     DefaultAIMode,
	"ai.provider": DefaultAIProvider,
	// The token default is empty. Registering the key is still required:
	// viper only maps PLATEPAL_AI_TOKEN onto it once it knows the key.
	"ai.token":       "",
	"ai.base_url":    DefaultAIBaseURL,
	"ai.model":       DefaultAIModel,
	"ai.max_tokens":  DefaultAIMaxTokens,
	"ai.timeout":     DefaultAITimeout,
	"ai.gateway_url": DefaultGatewayURL,

	"ratelimit.backend":    DefaultRateLimitBackend,
	"ratelimit.requests":   DefaultRateLimitRequests,
	"ratelimit.window":     DefaultRateLimitWindow,
	"ratelimit.redis_addr": DefaultRedisAddr,

	"database.path": DefaultDBPath,

	"recipes.base_url": DefaultRecipesBaseURL,
	"recipes.timeout":  DefaultRecipesTimeout,

	// Maintenance tasks run hourly (limiter window pruning) and nightly
	// (SQLite VACUUM) unless overridden.
	"scheduler.tasks.limiter_prune.enabled":    true,
	"scheduler.tasks.limiter_prune.schedule":   "0 0 * * * *",
	"scheduler.tasks.sql_maintenance.enabled":  true,
	"scheduler.tasks.sql_maintenance.schedule": "0 0 4 * * *",
}
