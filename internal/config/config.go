package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Per-source stores
	ChatStore DatabaseConfig
	WebStore  DatabaseConfig

	// Query cache
	Redis RedisConfig

	// Chat ingestion pipeline
	Ingest IngestConfig

	// Chat platform connection
	Chat ChatConfig

	// Portal crawl
	Crawl CrawlConfig

	// Path to the YAML catalog, empty for built-in tables
	CatalogFile string

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// DatabaseConfig holds store connection settings
type DatabaseConfig struct {
	Driver       string // "sqlite" or "postgres"
	Path         string // sqlite file
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	BusyTimeout  time.Duration
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig holds the response cache settings
type RedisConfig struct {
	Addr     string // empty disables caching
	Password string
	DB       int
	TTL      time.Duration
}

// IngestConfig holds chat pipeline settings
type IngestConfig struct {
	ImageDir      string
	ImagePrefix   string
	ImageTimeout  time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
	TitleLength   int
}

// ChatConfig selects and configures the chat platform
type ChatConfig struct {
	Platform      string // "onebot" or "telegram"
	ListenPort    string
	QueueSize     int
	OneBotAPIURL  string
	OneBotToken   string
	OneBotSecret  string
	TelegramToken string
	PollTimeout   int
}

// CrawlConfig holds portal crawl settings
type CrawlConfig struct {
	Schedule    string // cron spec, empty runs once
	Cookie      string
	UserAgent   string
	Timeout     time.Duration
	DetailDelay time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
	Env   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			RequestTimeout:  getDurationEnv("SERVER_REQUEST_TIMEOUT", 10*time.Second),
		},
		ChatStore: loadDatabaseConfig("CHAT_DB_", "./data/qq_messages.db", "campus_chat"),
		WebStore:  loadDatabaseConfig("WEB_DB_", "./data/website_data.db", "campus_web"),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			TTL:      getDurationEnv("CACHE_TTL", 30*time.Second),
		},
		Ingest: IngestConfig{
			ImageDir:      getEnv("IMAGE_DIR", "./img"),
			ImagePrefix:   getEnv("IMAGE_PREFIX", "img"),
			ImageTimeout:  getDurationEnv("IMAGE_TIMEOUT", 10*time.Second),
			RetryAttempts: getIntEnv("WRITE_RETRY_ATTEMPTS", 5),
			RetryBackoff:  getDurationEnv("WRITE_RETRY_BACKOFF", 500*time.Millisecond),
			TitleLength:   getIntEnv("TITLE_LENGTH", 20),
		},
		Chat: ChatConfig{
			Platform:      getEnv("CHAT_PLATFORM", "onebot"),
			ListenPort:    getEnv("COLLECTOR_PORT", "5700"),
			QueueSize:     getIntEnv("CHAT_QUEUE_SIZE", 64),
			OneBotAPIURL:  getEnv("ONEBOT_API_URL", "http://127.0.0.1:3000"),
			OneBotToken:   getEnv("ONEBOT_ACCESS_TOKEN", ""),
			OneBotSecret:  getEnv("ONEBOT_SECRET", ""),
			TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			PollTimeout:   getIntEnv("TELEGRAM_POLL_TIMEOUT", 60),
		},
		Crawl: CrawlConfig{
			Schedule:    getEnv("CRAWL_SCHEDULE", ""),
			Cookie:      getEnv("PORTAL_COOKIE", ""),
			UserAgent:   getEnv("PORTAL_USER_AGENT", "Mozilla/5.0 (compatible; campus-notice-collector/1.0)"),
			Timeout:     getDurationEnv("PORTAL_TIMEOUT", 30*time.Second),
			DetailDelay: getDurationEnv("PORTAL_DETAIL_DELAY", 0),
		},
		CatalogFile: getEnv("CATALOG_FILE", ""),
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Env:   getEnv("ENV", "production"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDatabaseConfig(prefix, defaultPath, defaultName string) DatabaseConfig {
	return DatabaseConfig{
		Driver:       getEnv(prefix+"DRIVER", "sqlite"),
		Path:         getEnv(prefix+"PATH", defaultPath),
		Host:         getEnv(prefix+"HOST", "localhost"),
		Port:         getEnv(prefix+"PORT", "5432"),
		User:         getEnv(prefix+"USER", "postgres"),
		Password:     getEnv(prefix+"PASSWORD", "postgres"),
		Name:         getEnv(prefix+"NAME", defaultName),
		SSLMode:      getEnv(prefix+"SSLMODE", "disable"),
		BusyTimeout:  getDurationEnv(prefix+"BUSY_TIMEOUT", 5*time.Second),
		MaxOpenConns: getIntEnv(prefix+"MAX_OPEN_CONNS", 4),
		MaxIdleConns: getIntEnv(prefix+"MAX_IDLE_CONNS", 2),
		MaxLifetime:  getDurationEnv(prefix+"MAX_LIFETIME", 5*time.Minute),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	for name, db := range map[string]DatabaseConfig{"CHAT_DB": c.ChatStore, "WEB_DB": c.WebStore} {
		switch db.Driver {
		case "sqlite":
			if db.Path == "" {
				return fmt.Errorf("%s_PATH is required for sqlite", name)
			}
		case "postgres":
			if db.Host == "" || db.Name == "" {
				return fmt.Errorf("%s_HOST and %s_NAME are required for postgres", name, name)
			}
		default:
			return fmt.Errorf("%s_DRIVER must be sqlite or postgres, got %q", name, db.Driver)
		}
	}
	switch c.Chat.Platform {
	case "onebot", "telegram":
	default:
		return fmt.Errorf("CHAT_PLATFORM must be onebot or telegram, got %q", c.Chat.Platform)
	}
	if c.Ingest.RetryAttempts < 1 {
		return fmt.Errorf("WRITE_RETRY_ATTEMPTS must be at least 1")
	}
	if c.Ingest.TitleLength < 1 {
		return fmt.Errorf("TITLE_LENGTH must be at least 1")
	}
	return nil
}

// GetDSN returns the driver specific connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
		)
	}
	return fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		c.Path, c.BusyTimeout.Milliseconds(),
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
