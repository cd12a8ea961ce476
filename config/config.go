package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"smcSignalBot/internal/adapters/logger" // Import the logger package for LogLevel
	"smcSignalBot/internal/ports"
)

// Config holds all application configuration.
type Config struct {
	// Binance API. Keys are optional: klines and ticker stats are public.
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Universe
	Symbols        []string // Static list; empty means discovery by volume
	TopSymbols     int
	MinQuoteVolume float64

	// Strategy profile
	Profile     string // Built-in profile name
	ProfileFile string // YAML profile, overrides Profile when set

	// Scan loop
	ScanInterval time.Duration
	Workers      int
	TaskTimeout  time.Duration

	// Candle cache
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Exchange request shaping
	FetchRPS         float64
	FetchBurst       int
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	// Signal journal; empty disables it
	DBPath           string
	JournalRetention time.Duration // 0 keeps entries forever

	// Sinks
	TelegramBotToken string
	TelegramChatID   string
	KafkaBrokers     []string
	KafkaTopic       string

	// Observability
	MetricsAddr       string
	HeartbeatInterval time.Duration // 0 disables the heartbeat

	// Logging
	LogLevel      logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFormat     string
	LogOutput     string
	LogMaxAgeDays int
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// KafkaEnabled reports whether the Kafka sink is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)
	if (cfg.APIKey == "") != (cfg.SecretKey == "") {
		errs = append(errs, "BINANCE_API_KEY and BINANCE_API_SECRET must be set together")
	}

	// Universe
	cfg.Symbols = getEnvAsList("SYMBOLS")
	cfg.TopSymbols, err = getEnvAsIntRequired("TOP_SYMBOLS", 50)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TOP_SYMBOLS: %v", err))
	} else if cfg.TopSymbols <= 0 {
		errs = append(errs, "TOP_SYMBOLS must be positive")
	}
	cfg.MinQuoteVolume, err = getEnvAsFloatRequired("MIN_QUOTE_VOLUME", 10_000_000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MIN_QUOTE_VOLUME: %v", err))
	} else if cfg.MinQuoteVolume < 0 {
		errs = append(errs, "MIN_QUOTE_VOLUME cannot be negative")
	}

	// Strategy profile
	cfg.Profile = getEnv("PROFILE", "structure")
	cfg.ProfileFile = getEnv("PROFILE_FILE", "")

	// Scan loop
	scanSeconds, err := getEnvAsIntRequired("SCAN_INTERVAL_SECONDS", 300)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SCAN_INTERVAL_SECONDS: %v", err))
	} else if scanSeconds <= 0 {
		errs = append(errs, "SCAN_INTERVAL_SECONDS must be positive")
	}
	cfg.ScanInterval = time.Duration(scanSeconds) * time.Second

	cfg.Workers, err = getEnvAsIntRequired("WORKERS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid WORKERS: %v", err))
	} else if cfg.Workers <= 0 || cfg.Workers > 100 {
		errs = append(errs, "WORKERS must be between 1 and 100")
	}

	taskSeconds, err := getEnvAsIntRequired("TASK_TIMEOUT_SECONDS", 60)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TASK_TIMEOUT_SECONDS: %v", err))
	} else if taskSeconds <= 0 {
		errs = append(errs, "TASK_TIMEOUT_SECONDS must be positive")
	}
	cfg.TaskTimeout = time.Duration(taskSeconds) * time.Second

	// Candle cache
	cacheSeconds, err := getEnvAsIntRequired("CACHE_TTL_SECONDS", 300)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CACHE_TTL_SECONDS: %v", err))
	} else if cacheSeconds < 0 {
		errs = append(errs, "CACHE_TTL_SECONDS cannot be negative")
	}
	cfg.CacheTTL = time.Duration(cacheSeconds) * time.Second
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = getEnvAsIntRequired("REDIS_DB", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid REDIS_DB: %v", err))
	}

	// Exchange request shaping
	cfg.FetchRPS, err = getEnvAsFloatRequired("FETCH_RPS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FETCH_RPS: %v", err))
	} else if cfg.FetchRPS < 0 {
		errs = append(errs, "FETCH_RPS cannot be negative")
	}
	cfg.FetchBurst = getEnvAsInt("FETCH_BURST", 5)

	cfg.RetryMaxAttempts, err = getEnvAsIntRequired("RETRY_MAX_ATTEMPTS", 3)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RETRY_MAX_ATTEMPTS: %v", err))
	} else if cfg.RetryMaxAttempts < 1 {
		errs = append(errs, "RETRY_MAX_ATTEMPTS must be at least 1")
	}
	retryMs, err := getEnvAsIntRequired("RETRY_BASE_DELAY_MS", 1000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RETRY_BASE_DELAY_MS: %v", err))
	} else if retryMs < 0 {
		errs = append(errs, "RETRY_BASE_DELAY_MS cannot be negative")
	}
	cfg.RetryBaseDelay = time.Duration(retryMs) * time.Millisecond

	// Database
	cfg.DBPath = getEnv("DB_PATH", "")
	retentionDays, err := getEnvAsIntRequired("JOURNAL_RETENTION_DAYS", 30)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid JOURNAL_RETENTION_DAYS: %v", err))
	} else if retentionDays < 0 {
		errs = append(errs, "JOURNAL_RETENTION_DAYS cannot be negative")
	}
	cfg.JournalRetention = time.Duration(retentionDays) * 24 * time.Hour

	// Sinks
	cfg.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")
	if (cfg.TelegramBotToken == "") != (cfg.TelegramChatID == "") {
		errs = append(errs, "TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	cfg.KafkaBrokers = getEnvAsList("KAFKA_BROKERS")
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "")
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		errs = append(errs, "KAFKA_TOPIC must be set when KAFKA_BROKERS is set")
	}

	// Observability
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")
	heartbeatSeconds, err := getEnvAsIntRequired("HEARTBEAT_INTERVAL_SECONDS", 3600)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HEARTBEAT_INTERVAL_SECONDS: %v", err))
	} else if heartbeatSeconds < 0 {
		errs = append(errs, "HEARTBEAT_INTERVAL_SECONDS cannot be negative")
	}
	cfg.HeartbeatInterval = time.Duration(heartbeatSeconds) * time.Second

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", logger.FormatJSON))
	switch cfg.LogFormat {
	case logger.FormatJSON, logger.FormatConsole, logger.FormatText:
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of json, console, text, got %q", cfg.LogFormat))
	}
	cfg.LogOutput = getEnv("LOG_OUTPUT", "stderr")
	cfg.LogMaxAgeDays = getEnvAsInt("LOG_MAX_AGE_DAYS", 0)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: configuration validation failed: %s", ports.ErrConfigurationError, strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated value, dropping empty items.
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
