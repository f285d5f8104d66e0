package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SWIPEBET_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. An empty path skips the
// file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SWIPEBET_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// Kalshi
	setStr(&cfg.Kalshi.BaseURL, "SWIPEBET_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.ApiKey, "SWIPEBET_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "SWIPEBET_KALSHI_RSA_PRIVATE_KEY_PATH")

	// Pond
	setBool(&cfg.Pond.Enabled, "SWIPEBET_POND_ENABLED")
	setStr(&cfg.Pond.BaseURL, "SWIPEBET_POND_BASE_URL")
	setStr(&cfg.Pond.ApiKey, "SWIPEBET_POND_API_KEY")

	// Feed
	setDuration(&cfg.Feed.TTL, "SWIPEBET_FEED_TTL")
	setDuration(&cfg.Feed.RefreshInterval, "SWIPEBET_FEED_REFRESH_INTERVAL")
	setDuration(&cfg.Feed.ColdStartTimeout, "SWIPEBET_FEED_COLD_START_TIMEOUT")
	setInt(&cfg.Feed.PageSize, "SWIPEBET_FEED_PAGE_SIZE")
	setInt(&cfg.Feed.MaxPages, "SWIPEBET_FEED_MAX_PAGES")
	setInt(&cfg.Feed.MaxRetries, "SWIPEBET_FEED_MAX_RETRIES")
	setDuration(&cfg.Feed.BackoffBase, "SWIPEBET_FEED_BACKOFF_BASE")
	setFloat64(&cfg.Feed.PagesPerSecond, "SWIPEBET_FEED_PAGES_PER_SECOND")
	setFloat64(&cfg.Feed.MinVolume, "SWIPEBET_FEED_MIN_VOLUME")
	setInt(&cfg.Feed.EventCooldown, "SWIPEBET_FEED_EVENT_COOLDOWN")
	setInt(&cfg.Feed.EventMinSpacing, "SWIPEBET_FEED_EVENT_MIN_SPACING")

	// Tokens
	setDuration(&cfg.Tokens.TTL, "SWIPEBET_TOKENS_TTL")
	setInt(&cfg.Tokens.MaxAttempts, "SWIPEBET_TOKENS_MAX_ATTEMPTS")
	setDuration(&cfg.Tokens.BackoffBase, "SWIPEBET_TOKENS_BACKOFF_BASE")

	// Swipes
	setBool(&cfg.Swipes.Enabled, "SWIPEBET_SWIPES_ENABLED")
	setInt(&cfg.Swipes.SwipesBeforeReturn, "SWIPEBET_SWIPES_BEFORE_RETURN")
	setDuration(&cfg.Swipes.ClientTTL, "SWIPEBET_SWIPES_CLIENT_TTL")

	// Redis
	setBool(&cfg.Redis.Enabled, "SWIPEBET_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SWIPEBET_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SWIPEBET_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SWIPEBET_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SWIPEBET_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SWIPEBET_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SWIPEBET_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.SnapshotTTL, "SWIPEBET_REDIS_SNAPSHOT_TTL")

	// S3
	setBool(&cfg.S3.Enabled, "SWIPEBET_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SWIPEBET_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SWIPEBET_S3_REGION")
	setStr(&cfg.S3.Bucket, "SWIPEBET_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SWIPEBET_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SWIPEBET_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SWIPEBET_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SWIPEBET_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "SWIPEBET_S3_PREFIX")

	// Server
	setInt(&cfg.Server.Port, "SWIPEBET_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SWIPEBET_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "SWIPEBET_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "SWIPEBET_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "SWIPEBET_SERVER_RATE_WINDOW")

	// Notify
	setStr(&cfg.Notify.TelegramToken, "SWIPEBET_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SWIPEBET_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SWIPEBET_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SWIPEBET_NOTIFY_EVENTS")
	setDuration(&cfg.Notify.Cooldown, "SWIPEBET_NOTIFY_COOLDOWN")

	// Top-level
	setStr(&cfg.Mode, "SWIPEBET_MODE")
	setStr(&cfg.LogLevel, "SWIPEBET_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
