// Package config defines the top-level configuration for the feed service
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SWIPEBET_* environment
// variables.
type Config struct {
	Kalshi   KalshiConfig  `toml:"kalshi"`
	Pond     PondConfig    `toml:"pond"`
	Feed     FeedConfig    `toml:"feed"`
	Tokens   TokensConfig  `toml:"tokens"`
	Swipes   SwipesConfig  `toml:"swipes"`
	Redis    RedisConfig   `toml:"redis"`
	S3       S3Config      `toml:"s3"`
	Server   ServerConfig  `toml:"server"`
	Notify   NotifyConfig  `toml:"notify"`
	Mode     string        `toml:"mode"`
	LogLevel string        `toml:"log_level"`
}

// KalshiConfig holds the exchange listing API parameters.
type KalshiConfig struct {
	BaseURL           string `toml:"base_url"`
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
}

// PondConfig holds the settlement-metadata API parameters.
type PondConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
}

// FeedConfig holds the market cache and diversification parameters.
type FeedConfig struct {
	TTL              duration `toml:"ttl"`
	RefreshInterval  duration `toml:"refresh_interval"`
	ColdStartTimeout duration `toml:"cold_start_timeout"`
	PageSize         int      `toml:"page_size"`
	MaxPages         int      `toml:"max_pages"`
	MaxRetries       int      `toml:"max_retries"`
	BackoffBase      duration `toml:"backoff_base"`
	PagesPerSecond   float64  `toml:"pages_per_second"`
	MinVolume        float64  `toml:"min_volume"`
	EventCooldown    int      `toml:"event_cooldown"`
	EventMinSpacing  int      `toml:"event_min_spacing"`
}

// TokensConfig holds the token cache parameters.
type TokensConfig struct {
	TTL         duration `toml:"ttl"`
	MaxAttempts int      `toml:"max_attempts"`
	BackoffBase duration `toml:"backoff_base"`
}

// SwipesConfig holds the swipe-history tracker parameters.
type SwipesConfig struct {
	Enabled            bool     `toml:"enabled"`
	SwipesBeforeReturn int      `toml:"swipes_before_return"`
	ClientTTL          duration `toml:"client_ttl"`
}

// RedisConfig holds Redis connection parameters. Redis is optional: without
// it there is no warm-start snapshot tier and rate limiting is disabled.
type RedisConfig struct {
	Enabled     bool     `toml:"enabled"`
	Addr        string   `toml:"addr"`
	Password    string   `toml:"password"`
	DB          int      `toml:"db"`
	PoolSize    int      `toml:"pool_size"`
	MaxRetries  int      `toml:"max_retries"`
	TLSEnabled  bool     `toml:"tls_enabled"`
	SnapshotTTL duration `toml:"snapshot_ttl"`
}

// S3Config holds S3-compatible object storage parameters for snapshot
// archival. Optional.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// ServerConfig holds the HTTP API parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	RateLimit   int      `toml:"rate_limit"`
	RateWindow  duration `toml:"rate_window"`
}

// NotifyConfig holds operator alert channel parameters.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
	Cooldown          duration `toml:"cooldown"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "15m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "15m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with sensible defaults for local
// development: public Kalshi API, no auth, no Redis/S3, serve mode.
func Defaults() Config {
	return Config{
		Kalshi: KalshiConfig{
			BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
		},
		Pond: PondConfig{
			Enabled: true,
			BaseURL: "https://api.pond.fun/api/v1",
		},
		Feed: FeedConfig{
			TTL:              duration{15 * time.Minute},
			RefreshInterval:  duration{10 * time.Minute},
			ColdStartTimeout: duration{10 * time.Second},
			PageSize:         200,
			MaxPages:         30,
			MaxRetries:       3,
			BackoffBase:      duration{time.Second},
			PagesPerSecond:   10,
			MinVolume:        10_000,
			EventCooldown:    10,
			EventMinSpacing:  5,
		},
		Tokens: TokensConfig{
			TTL:         duration{30 * time.Minute},
			MaxAttempts: 3,
			BackoffBase: duration{500 * time.Millisecond},
		},
		Swipes: SwipesConfig{
			Enabled:            true,
			SwipesBeforeReturn: 100,
			ClientTTL:          duration{24 * time.Hour},
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			PoolSize:    10,
			MaxRetries:  3,
			SnapshotTTL: duration{24 * time.Hour},
		},
		S3: S3Config{
			Region: "us-east-1",
			Prefix: "snapshots",
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   300,
			RateWindow:  duration{time.Minute},
		},
		Notify: NotifyConfig{
			Events:   []string{"refresh_failed", "mock_fallback", "token_stale"},
			Cooldown: duration{10 * time.Minute},
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve":    true,
	"snapshot": true,
	"full":     true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, snapshot, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url is required")
	}
	if c.Kalshi.ApiKey != "" && c.Kalshi.RsaPrivateKeyPath == "" {
		errs = append(errs, "kalshi: rsa_private_key_path is required when api_key is set")
	}

	if c.Pond.Enabled && c.Pond.BaseURL == "" {
		errs = append(errs, "pond: base_url is required when enabled")
	}

	if c.Feed.TTL.Duration <= 0 {
		errs = append(errs, "feed: ttl must be positive")
	}
	if c.Feed.PageSize < 1 || c.Feed.PageSize > 1000 {
		errs = append(errs, fmt.Sprintf("feed: page_size %d out of range [1,1000]", c.Feed.PageSize))
	}
	if c.Feed.MaxPages < 1 {
		errs = append(errs, "feed: max_pages must be at least 1")
	}
	if c.Feed.EventCooldown < 0 || c.Feed.EventMinSpacing < 0 {
		errs = append(errs, "feed: event_cooldown and event_min_spacing must be non-negative")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr is required when enabled")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket is required when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region is required when enabled")
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port %d out of range", c.Server.Port))
	}

	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == "" {
		errs = append(errs, "notify: telegram_chat_id is required when telegram_token is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
