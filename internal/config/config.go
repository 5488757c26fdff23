// Package config manages application configuration from defaults,
// an optional config.yaml file, and PLATEPAL_-prefixed environment variables.
package config

import (
	"time"
)

// Config defines the application configuration for all PlatePal components:
// the AI proxy gateway, the assistant client, local storage, the recipe
// lookup client, and scheduled maintenance.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	AI        AIConfig        `mapstructure:"ai"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Recipes   RecipesConfig   `mapstructure:"recipes"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls log verbosity and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ServerConfig holds gateway listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,min=1s,max=1m"`
}

// AIConfig holds settings for the upstream completion provider and for
// the client-side transport selection.
//
// Mode selects how the assistant client reaches the provider: "proxy"
// sends requests through the gateway with no credential attached, "direct"
// talks to the provider itself using the locally stored credential.
// Provider selects the direct-mode backend.
type AIConfig struct {
	Mode     string `mapstructure:"mode"     validate:"required,oneof=proxy direct"`
	Provider string `mapstructure:"provider" validate:"required,oneof=openai gemini"`

	// Token is the server-side provider credential used by the gateway.
	// The client binary never reads it; direct mode uses the credential
	// from the local store instead.
	Token      string        `mapstructure:"token"`
	BaseURL    string        `mapstructure:"base_url"    validate:"required,url"`
	Model      string        `mapstructure:"model"       validate:"required"`
	MaxTokens  int           `mapstructure:"max_tokens"  validate:"required,min=1,max=4096"`
	Timeout    time.Duration `mapstructure:"timeout"     validate:"required,min=1s,max=10m"`
	GatewayURL string        `mapstructure:"gateway_url" validate:"required,url"`
}

// RateLimitConfig holds per-IP request budget settings for the gateway.
type RateLimitConfig struct {
	Backend   string        `mapstructure:"backend"    validate:"required,oneof=memory redis"`
	Requests  int           `mapstructure:"requests"   validate:"required,min=1"`
	Window    time.Duration `mapstructure:"window"     validate:"required,min=1s,max=24h"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

// DatabaseConfig holds local SQLite storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// RecipesConfig holds settings for the public recipe lookup API.
type RecipesConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"required,min=1s,max=5m"`
}

// SchedulerConfig holds scheduled maintenance task settings, keyed by
// task name as registered in the task registry.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a single scheduled task and sets its cron schedule
// (six-field cron expressions, seconds first).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}
