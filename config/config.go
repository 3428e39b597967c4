package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// RedisConfig is the distributed rate-limit storage config, used by
// the test-send rate limiter (middleware/sender_rate_limit.go).
type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

// Config is the engine's full runtime configuration, loaded once at
// startup from the environment (optionally via a .env file).
type Config struct {
	Environment string
	ServerPort  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	EncryptionKey    string
	JWTSigningSecret string

	SentryDSN string

	WarmupFromAddress   string
	RateLimitTestSender int

	VoiceAdapterBaseURL string
	VoiceAdapterAPIKey  string
	VoiceWebhookURL     string

	NetworkMinIntervalSeconds int
	NetworkJitterSeconds      int
	NetworkDailyCap           int

	GlobalConcurrency     int
	DrainTimeoutSeconds   int
	StaleThresholdMinutes int

	CompletionBaseURL string
	CompletionAPIKey  string
	CompletionModel   string

	Redis RedisConfig
}

var AppConfig *Config

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on process environment")
	}
}

// LoadConfig reads and validates the process environment into
// AppConfig, failing fast on any missing required secret.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "7000"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", ""),

		EncryptionKey:    getEnv("ENCRYPTION_KEY", ""),
		JWTSigningSecret: getEnv("JWT_SIGNING_SECRET", ""),

		SentryDSN: getEnv("SENTRY_DSN", ""),

		WarmupFromAddress:   getEnv("WARMUP_FROM_ADDRESS", ""),
		RateLimitTestSender: getEnvAsInt("RATE_LIMIT_TEST_SENDER", 5),

		VoiceAdapterBaseURL: getEnv("VOICE_ADAPTER_BASE_URL", "https://api.bland.ai/v1"),
		VoiceAdapterAPIKey:  getEnv("VOICE_ADAPTER_API_KEY", ""),
		VoiceWebhookURL:     getEnv("VOICE_WEBHOOK_URL", "http://localhost:7000/webhooks/voice"),

		NetworkMinIntervalSeconds: getEnvAsInt("NETWORK_MIN_INTERVAL_SECONDS", 120),
		NetworkJitterSeconds:      getEnvAsInt("NETWORK_JITTER_SECONDS", 180),
		NetworkDailyCap:           getEnvAsInt("NETWORK_DAILY_CAP", 25),

		GlobalConcurrency:     getEnvAsInt("GLOBAL_CONCURRENCY", 8),
		DrainTimeoutSeconds:   getEnvAsInt("DRAIN_TIMEOUT_SECONDS", 60),
		StaleThresholdMinutes: getEnvAsInt("STALE_THRESHOLD_MINUTES", 10),

		CompletionBaseURL: getEnv("COMPLETION_BASE_URL", "https://api.openai.com/v1"),
		CompletionAPIKey:  getEnv("COMPLETION_API_KEY", ""),
		CompletionModel:   getEnv("COMPLETION_MODEL", "gpt-4o-mini"),

		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	required := map[string]string{
		"DB_USER":            cfg.DBUser,
		"DB_PASSWORD":        cfg.DBPassword,
		"DB_NAME":            cfg.DBName,
		"ENCRYPTION_KEY":     cfg.EncryptionKey,
		"JWT_SIGNING_SECRET": cfg.JWTSigningSecret,
	}
	for name, val := range required {
		if val == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", name)
		}
	}

	AppConfig = cfg
	logConfig(cfg)
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func maskPassword(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func logConfig(cfg *Config) {
	log.Printf(
		"config loaded: env=%s db=%s@%s:%s/%s redis_enabled=%v global_concurrency=%d",
		cfg.Environment, cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName,
		cfg.Redis.Enabled, cfg.GlobalConcurrency,
	)
	_ = maskPassword(cfg.DBPassword)
}
