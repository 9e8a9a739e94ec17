package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Index parameters
	IndexSize     int    // number of constituents (top-K by market cap)
	UniverseLimit int    // max tickers to pull from the screener
	HistoryPeriod string // Yahoo chart range, e.g. "1y", "6mo"
	LookbackDays  int    // default compute/recompute window in calendar days
	FallbackDays  int    // max backward steps when a date has no index record

	// Data providers
	NasdaqBaseURL string
	YahooBaseURL  string
	FetchRetries  int
	FetchTimeout  int // seconds

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	GatewayAddr   string

	// Scheduling (cron spec, engine local time)
	CronSpec string

	// Alerting
	WebhookURL       string
	TelegramBotToken string
	TelegramChatID   string

	// Admin surface
	AdminTOTPSecret string
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	return &Config{
		IndexSize:     getEnvInt("INDEX_SIZE", 10),
		UniverseLimit: getEnvInt("UNIVERSE_LIMIT", 100),
		HistoryPeriod: getEnv("HISTORY_PERIOD", "1y"),
		LookbackDays:  getEnvInt("LOOKBACK_DAYS", 30),
		FallbackDays:  getEnvInt("FALLBACK_DAYS", 5),

		NasdaqBaseURL: getEnv("NASDAQ_BASE_URL", "https://api.nasdaq.com/api/screener/stocks"),
		YahooBaseURL:  getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		FetchRetries:  getEnvInt("FETCH_RETRIES", 3),
		FetchTimeout:  getEnvInt("FETCH_TIMEOUT_SEC", 20),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/index.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		GatewayAddr:   getEnv("GATEWAY_ADDR", ":8080"),

		// Default: 17:30 Mon-Fri, after the US close
		CronSpec: getEnv("CRON_SPEC", "30 17 * * 1-5"),

		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		AdminTOTPSecret: getEnv("ADMIN_TOTP_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
