package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string
	Environment string
	WorkerID    string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// Database
	DatabaseDSN string

	// NATS (real-time broadcast of alerts and sensor readings)
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	AlertsSubject      string
	SensorLogsSubject  string

	// AI prediction service
	PredictionURL      string
	PredictionTimeout  time.Duration
	FireLabel          string
	DetectionThreshold float64

	// Snapshot capture
	CaptureTimeout time.Duration
	SnapshotDir    string
	SamplePoolDir  string

	// Object upload service
	UploadURL     string
	UploadTimeout time.Duration
	UploadFolder  string

	// Weather data source (sensor simulation)
	WeatherAPIURL  string
	WeatherAPIKey  string
	WeatherTimeout time.Duration

	// Telegram bot
	TelegramAPIURL      string
	TelegramBotToken    string
	TelegramChatID      string
	TelegramTimeout     time.Duration
	TelegramMaxAttempts int
	TelegramBackoffBase time.Duration
	TelegramBackoffMax  time.Duration
	TelegramTimezone    string

	// SMTP mail
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailSender   string

	// Sweep scheduling
	ScanInterval       time.Duration
	SimulationInterval time.Duration

	// Job queue
	QueueWorkers int
	QueueSize    int

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		WorkerID:    getEnv("WORKER_ID", "firewatch-1"),
		Port:        getEnvInt("PORT", 8000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// Database
		DatabaseDSN: getEnv("DATABASE_DSN",
			"firewatch:firewatch@tcp(localhost:3306)/firewatch?charset=utf8mb4&parseTime=True&loc=Local"),

		// NATS
		NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		AlertsSubject:      getEnv("ALERTS_SUBJECT", "alerts.created"),
		SensorLogsSubject:  getEnv("SENSOR_LOGS_SUBJECT", "sensor_logs.created"),

		// AI prediction service
		PredictionURL:      getEnv("PREDICTION_URL", "http://localhost:5000"),
		PredictionTimeout:  getEnvDuration("PREDICTION_TIMEOUT", 10*time.Second),
		FireLabel:          getEnv("FIRE_LABEL", "FIRE"),
		DetectionThreshold: getEnvFloat("FIRE_DETECTION_THRESHOLD", 0.85),

		// Snapshot capture
		CaptureTimeout: getEnvDuration("CAPTURE_TIMEOUT", 10*time.Second),
		SnapshotDir:    getEnv("SNAPSHOT_DIR", "tmp/snapshots"),
		SamplePoolDir:  getEnv("SAMPLE_POOL_DIR", "sample_snapshots"),

		// Object upload service
		UploadURL:     getEnv("UPLOAD_URL", "http://localhost:9000/upload"),
		UploadTimeout: getEnvDuration("UPLOAD_TIMEOUT", 15*time.Second),
		UploadFolder:  getEnv("UPLOAD_FOLDER", "firewatch/snapshots"),

		// Weather data source
		WeatherAPIURL:  getEnv("WEATHERAPI_URL", "https://api.weatherapi.com/v1/current.json"),
		WeatherAPIKey:  getEnv("WEATHERAPI_API_KEY", ""),
		WeatherTimeout: getEnvDuration("WEATHER_TIMEOUT", 10*time.Second),

		// Telegram bot
		TelegramAPIURL:      getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:      getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramTimeout:     getEnvDuration("TELEGRAM_TIMEOUT", 10*time.Second),
		TelegramMaxAttempts: getEnvInt("TELEGRAM_MAX_ATTEMPTS", 5),
		TelegramBackoffBase: getEnvDuration("TELEGRAM_BACKOFF_BASE", 3*time.Second),
		TelegramBackoffMax:  getEnvDuration("TELEGRAM_BACKOFF_MAX", 5*time.Minute),
		TelegramTimezone:    getEnv("TELEGRAM_TIMEZONE", "Asia/Ho_Chi_Minh"),

		// SMTP mail
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailSender:   getEnv("MAILER_SENDER_ADDRESS", "alerts@firewatch.local"),

		// Sweep scheduling
		ScanInterval:       getEnvDuration("SCAN_INTERVAL", 1*time.Minute),
		SimulationInterval: getEnvDuration("SIMULATION_INTERVAL", 5*time.Minute),

		// Job queue
		QueueWorkers: getEnvInt("QUEUE_WORKERS", 4),
		QueueSize:    getEnvInt("QUEUE_SIZE", 128),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// TelegramConfigured reports whether both the bot token and chat id are set.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
