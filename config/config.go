package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/scan-order/utils"
)

const defaultJWTSecret = "CHANGE_ME_IN_ENV_FILE"

type Config struct {
	Port    string
	GinMode string

	DB DBConfig

	JWTSecret      string
	AccessTokenTTL time.Duration

	AllowedOrigins []string

	RateLimitRPS           float64
	RateLimitBurst         int
	AuthRateLimitPerMinute int

	AdminAPIKey string

	Chat ChatConfig
}

type DBConfig struct {
	Driver   string
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
	DSN      string
}

type ChatConfig struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
	Timeout         time.Duration
	HistoryTurns    int
}

// Load reads .env when present, then the environment, applying defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debug(".env file not found, using environment only")
	}

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),
		DB: DBConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			Name:     getEnv("DB_NAME", "scan_order"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			DSN:      getEnv("DATABASE_DSN", ""),
		},
		JWTSecret:              getEnv("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:         time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_HOURS", 8)) * time.Hour,
		AllowedOrigins:         splitList(getEnv("ALLOWED_ORIGINS", "*")),
		RateLimitRPS:           getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 40),
		AuthRateLimitPerMinute: getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 10),
		AdminAPIKey:            getEnv("ADMIN_API_KEY", ""),
		Chat: ChatConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			MaxOutputTokens: getEnvInt("CHAT_MAX_OUTPUT_TOKENS", 800),
			Timeout:         time.Duration(getEnvInt("CHAT_TIMEOUT_SECONDS", 30)) * time.Second,
			HistoryTurns:    getEnvInt("CHAT_HISTORY_TURNS", 10),
		},
	}

	if cfg.JWTSecret == defaultJWTSecret {
		utils.ErrorLogger.Warn("JWT_SECRET_KEY is not set, using the insecure default")
	}
	if cfg.Chat.APIKey == "" {
		utils.InfoLogger.Warn("GEMINI_API_KEY is not set, chat requests will fail")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
