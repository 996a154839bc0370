// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Draft store backends.
const (
	DraftStoreMemory = "memory"
	DraftStoreRedis  = "redis"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	CORSAllowedOrigins []string

	// Caller identity. When TrustCallerContext is set the callerContext in the
	// request body is used as-is and JWT validation is skipped.
	JWTSecret          string
	TrustCallerContext bool

	// Draft store
	DraftStore         string
	DraftTTL           time.Duration
	DraftMaxEntries    int
	DraftSweepInterval time.Duration

	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// NATS settings, empty URL disables dialogue events
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// Report backend
	ReportsBaseURL  string
	ReportsAPIToken string
	ReportsTimeout  time.Duration

	// LLM settings
	AnthropicAPIKey string
	OpenAIAPIKey    string
	DefaultLLM      string
	LLMModel        string
	LLMTimeout      time.Duration

	// Conversation bounds
	MaxTurns     int
	MaxTurnChars int

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables, after loading a
// .env file from the working directory if one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS"),

		// Identity
		JWTSecret:          getEnv("JWT_SECRET", "development-secret-change-in-production"),
		TrustCallerContext: getBoolEnv("TRUST_CALLER_CONTEXT", false),

		// Drafts
		DraftStore:         getEnv("DRAFT_STORE", DraftStoreMemory),
		DraftTTL:           getDurationEnv("DRAFT_TTL", 10*time.Minute),
		DraftMaxEntries:    getIntEnv("DRAFT_MAX_ENTRIES", 10000),
		DraftSweepInterval: getDurationEnv("DRAFT_SWEEP_INTERVAL", time.Minute),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		// NATS
		NATSURL:      getEnv("NATS_URL", ""),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// Reports
		ReportsBaseURL:  getEnv("REPORTS_BASE_URL", "http://localhost:3000"),
		ReportsAPIToken: getEnv("REPORTS_API_TOKEN", ""),
		ReportsTimeout:  getDurationEnv("REPORTS_TIMEOUT", 10*time.Second),

		// LLM
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		DefaultLLM:      getEnv("DEFAULT_LLM", "anthropic"),
		LLMModel:        getEnv("LLM_MODEL", ""),
		LLMTimeout:      getDurationEnv("LLM_TIMEOUT", 15*time.Second),

		// Conversation
		MaxTurns:     getIntEnv("MAX_TURNS", 12),
		MaxTurnChars: getIntEnv("MAX_TURN_CHARS", 4000),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
