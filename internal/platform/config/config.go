package config

import (
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	LogLevel      slog.Level
	StorageDriver string

	DatabaseURL    string
	EnableDBCheck  bool
	MigrationsPath string

	CacheDriver        string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisPrefix        string
	RealTimeCacheTTL   time.Duration
	HistoricalCacheTTL time.Duration

	// External rate source
	ExternalUseSimulated       bool
	ExternalRealTimeEndpoint   string
	ExternalHistoricalEndpoint string
	ExternalAPIKey             string
	ExternalTimeout            time.Duration
	ExternalRetryAttempts      int
	ExternalRetryBaseDelay     time.Duration

	// Background rate updater
	UpdaterEnabled            bool
	UpdaterInterval           time.Duration
	UpdaterStaleness          time.Duration
	UpdaterHistoricalInterval time.Duration
	UpdaterErrorCooldown      time.Duration
	UpdaterPacing             time.Duration
	UpdaterHistoryDays        int
	UpdaterMaxPairs           int

	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		LogLevel:       parseLogLevel(v.GetString("LOG_LEVEL")),
		StorageDriver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:    v.GetString("PGSQL_URL"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),

		CacheDriver:        strings.ToLower(v.GetString("CACHE_DRIVER")),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		RedisPrefix:        v.GetString("REDIS_PREFIX"),
		RealTimeCacheTTL:   durationOr(v, "REALTIME_CACHE_TTL", 5*time.Minute),
		HistoricalCacheTTL: durationOr(v, "HISTORICAL_CACHE_TTL", time.Hour),

		ExternalUseSimulated:       v.GetBool("EXTERNAL_USE_SIMULATED"),
		ExternalRealTimeEndpoint:   v.GetString("EXTERNAL_REALTIME_ENDPOINT"),
		ExternalHistoricalEndpoint: v.GetString("EXTERNAL_HISTORICAL_ENDPOINT"),
		ExternalAPIKey:             v.GetString("EXTERNAL_API_KEY"),
		ExternalTimeout:            durationOr(v, "EXTERNAL_TIMEOUT", 10*time.Second),
		ExternalRetryAttempts:      v.GetInt("EXTERNAL_RETRY_ATTEMPTS"),
		ExternalRetryBaseDelay:     durationOr(v, "EXTERNAL_RETRY_BASE_DELAY", 500*time.Millisecond),

		UpdaterEnabled:            v.GetBool("UPDATER_ENABLED"),
		UpdaterInterval:           durationOr(v, "UPDATER_INTERVAL", 15*time.Minute),
		UpdaterStaleness:          durationOr(v, "UPDATER_STALENESS", 30*time.Minute),
		UpdaterHistoricalInterval: durationOr(v, "UPDATER_HISTORICAL_INTERVAL", 24*time.Hour),
		UpdaterErrorCooldown:      durationOr(v, "UPDATER_ERROR_COOLDOWN", 5*time.Minute),
		UpdaterPacing:             durationOr(v, "UPDATER_PACING", time.Second),
		UpdaterHistoryDays:        v.GetInt("UPDATER_HISTORY_DAYS"),
		UpdaterMaxPairs:           v.GetInt("UPDATER_MAX_PAIRS"),

		RateLimit:          v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.StorageDriver != StorageDriverMemory && cfg.StorageDriver != StorageDriverPostgres {
		log.Printf("Warning: unknown STORAGE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StorageDriver, StorageDriverPostgres)
		cfg.StorageDriver = StorageDriverPostgres
	}
	if cfg.StorageDriver == StorageDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.CacheDriver != CacheDriverMemory && cfg.CacheDriver != CacheDriverRedis {
		log.Printf("Warning: unknown CACHE_DRIVER ('%s'). Defaulting to %s.\n", cfg.CacheDriver, CacheDriverMemory)
		cfg.CacheDriver = CacheDriverMemory
	}
	if !cfg.ExternalUseSimulated && cfg.ExternalRealTimeEndpoint == "" {
		log.Println("Warning: EXTERNAL_REALTIME_ENDPOINT not set while simulated rates are disabled.")
	}
	if cfg.ExternalRetryAttempts < 1 {
		cfg.ExternalRetryAttempts = 1
	}
	if cfg.UpdaterHistoryDays < 1 {
		cfg.UpdaterHistoryDays = 30
	}
	if cfg.UpdaterMaxPairs < 1 {
		cfg.UpdaterMaxPairs = 20
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	v.SetDefault("CACHE_DRIVER", CacheDriverMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "cc:")
	v.SetDefault("REALTIME_CACHE_TTL", "5m")
	v.SetDefault("HISTORICAL_CACHE_TTL", "1h")

	v.SetDefault("EXTERNAL_USE_SIMULATED", true)
	v.SetDefault("EXTERNAL_REALTIME_ENDPOINT", "")
	v.SetDefault("EXTERNAL_HISTORICAL_ENDPOINT", "")
	v.SetDefault("EXTERNAL_API_KEY", "")
	v.SetDefault("EXTERNAL_TIMEOUT", "10s")
	v.SetDefault("EXTERNAL_RETRY_ATTEMPTS", 3)
	v.SetDefault("EXTERNAL_RETRY_BASE_DELAY", "500ms")

	v.SetDefault("UPDATER_ENABLED", true)
	v.SetDefault("UPDATER_INTERVAL", "15m")
	v.SetDefault("UPDATER_STALENESS", "30m")
	v.SetDefault("UPDATER_HISTORICAL_INTERVAL", "24h")
	v.SetDefault("UPDATER_ERROR_COOLDOWN", "5m")
	v.SetDefault("UPDATER_PACING", "1s")
	v.SetDefault("UPDATER_HISTORY_DAYS", 30)
	v.SetDefault("UPDATER_MAX_PAIRS", 20)

	v.SetDefault("RATE_LIMIT", "100-S")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// durationOr parses a duration setting, falling back to def on bad input.
func durationOr(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func parseLogLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		log.Printf("Warning: Invalid value for LOG_LEVEL ('%s'). Defaulting to info.\n", raw)
		return slog.LevelInfo
	}
	return level
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
