package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultAPIBaseURL is the backend the booking front-end was built against.
	DefaultAPIBaseURL = "http://localhost:5000"

	// DefaultMessageClearDelay is how long a booking message stays visible.
	DefaultMessageClearDelay = 5 * time.Second
)

// Config holds application configuration
type Config struct {
	Env               string
	LogLevel          string
	APIBaseURL        string
	MessageClearDelay time.Duration
	MetricsEnabled    bool

	// Session token storage
	SessionStore  string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Fixture API server
	StubPort        string
	StubTokenSecret string
	StubTokenTTL    time.Duration
	StubRequireAuth bool
	StubLoginEmail  string
	StubLoginPass   string
	CORSOrigins     []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		APIBaseURL:        strings.TrimRight(getEnv("HOSPITAL_API_BASE_URL", DefaultAPIBaseURL), "/"),
		MessageClearDelay: getEnvAsDuration("MESSAGE_CLEAR_DELAY", DefaultMessageClearDelay),
		MetricsEnabled:    getEnvAsBool("METRICS_ENABLED", true),

		SessionStore:  strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", "memory"))),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		StubPort:        getEnv("STUB_PORT", "5000"),
		StubTokenSecret: getEnv("STUB_TOKEN_SECRET", "dev-secret"),
		StubTokenTTL:    getEnvAsDuration("STUB_TOKEN_TTL", time.Hour),
		StubRequireAuth: getEnvAsBool("STUB_REQUIRE_AUTH", false),
		StubLoginEmail:  getEnv("STUB_LOGIN_EMAIL", "staff@hospital.test"),
		StubLoginPass:   getEnv("STUB_LOGIN_PASSWORD", "password"),
		CORSOrigins:     getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

// UsesRedisSessions reports whether session tokens should be kept in Redis.
func (c *Config) UsesRedisSessions() bool {
	return c != nil && c.SessionStore == "redis"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma separated variable, dropping empty entries
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
