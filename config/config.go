package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	LogLevel    string
	DBUrl       string
	FrontendURL string
	// Extra comma-separated origins allowed by CORS in addition to FrontendURL
	AllowedOrigins []string
	// Auth
	JWTSecret      string
	JWTExpiryHours int
	// SMTP Configuration
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Embeddings
	EmbeddingProvider       string // openai | gemini | none
	LLMAPIKey               string
	EmbeddingEndpoint       string
	EmbeddingModel          string
	GeminiAPIKey            string
	EmbeddingTimeoutSeconds int
	// Interviews
	QuestionBankFile  string
	SessionTTLMinutes int
	// Rate Limiting Configuration
	RateLimitWindowSeconds       int
	RateLimitGlobalThreshold     int
	RateLimitLoginThreshold      int
	RateLimitLoginWindowMinutes  int
	RateLimitVerifyThreshold     int
	RateLimitVerifyWindowMinutes int
	RateLimitScoringThreshold    int
	CVUploadsPerMinute           int
	CVUploadsPerDay              int
	// Security Configuration
	BotScoreThreshold int
	MaxCVUploadBytes  int64
	ClamAVAddress     string
	ClamAVTimeoutSecs int
}

func LoadConfig() (*Config, error) {
	// .env is only present in local development
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBUrl:          getEnv("DATABASE_URL", ""),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 168),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@interview-coach.app"),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Embeddings
		EmbeddingProvider:       strings.ToLower(getEnv("EMBEDDING_PROVIDER", "none")),
		LLMAPIKey:               getEnv("LLM_API_KEY", ""),
		EmbeddingEndpoint:       getEnv("EMBEDDING_ENDPOINT", ""),
		EmbeddingModel:          getEnv("EMBEDDING_MODEL", ""),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		EmbeddingTimeoutSeconds: getEnvInt("EMBEDDING_TIMEOUT_SECONDS", 15),
		// Interviews
		QuestionBankFile:  getEnv("QUESTION_BANK_FILE", ""),
		SessionTTLMinutes: getEnvInt("SESSION_TTL_MINUTES", 120),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:       getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold:     getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitLoginThreshold:      getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 5),
		RateLimitLoginWindowMinutes:  getEnvInt("RATE_LIMIT_LOGIN_WINDOW_MINUTES", 15),
		RateLimitVerifyThreshold:     getEnvInt("RATE_LIMIT_VERIFY_THRESHOLD", 3),
		RateLimitVerifyWindowMinutes: getEnvInt("RATE_LIMIT_VERIFY_WINDOW_MINUTES", 60),
		RateLimitScoringThreshold:    getEnvInt("RATE_LIMIT_SCORING_THRESHOLD", 30),
		CVUploadsPerMinute:           getEnvInt("CV_UPLOADS_PER_MINUTE", 10),
		CVUploadsPerDay:              getEnvInt("CV_UPLOADS_PER_DAY", 50),
		// Security Configuration
		BotScoreThreshold: getEnvInt("BOT_SCORE_THRESHOLD", 50),
		MaxCVUploadBytes:  int64(getEnvInt("MAX_CV_UPLOAD_BYTES", 1<<20)),
		ClamAVAddress:     getEnv("CLAMAV_ADDRESS", ""),
		ClamAVTimeoutSecs: getEnvInt("CLAMAV_TIMEOUT_SECONDS", 30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Reports and CV analyses will not be archived.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Sessions and rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("config: JWT_SECRET must be set to at least 32 characters")
	}
	switch c.EmbeddingProvider {
	case "", "none":
	case "openai":
		if c.LLMAPIKey == "" {
			return errors.New("config: LLM_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return errors.New("config: GEMINI_API_KEY is required when EMBEDDING_PROVIDER=gemini")
		}
	default:
		return errors.New("config: EMBEDDING_PROVIDER must be one of openai, gemini, none")
	}
	if c.SessionTTLMinutes <= 0 {
		return errors.New("config: SESSION_TTL_MINUTES must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.EmbeddingTimeoutSeconds) * time.Second
}

func (c *Config) ClamAVTimeout() time.Duration {
	return time.Duration(c.ClamAVTimeoutSecs) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func splitList(value string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
