package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Required: issuer claim for ID tokens

	CookieSecret string // Required: cookie-domain encryption secret
	BearerSecret string // Required: bearer-domain encryption secret
	CookieSecure bool   // Optional: mark the session cookie Secure (default: true)

	RedisAddr string // Optional: credential store address (default: localhost:6379)

	AccessTokenTTL  time.Duration // Optional: access/ID token lifetime (default: 1h)
	RefreshTokenTTL time.Duration // Optional: refresh token / session record lifetime (default: 720h)

	Algorithm      string        // Optional: ID-token signing algorithm (EdDSA, RS256) (default: EdDSA)
	KeyGracePeriod time.Duration // Optional: verification window for retired keys (default: 30 days)
	MasterKeyPath  string        // Optional: path to master encryption key file
	KeystoreFile   string        // Optional: path to the SQLite keystore file (default: ./keystore.db)
	PepperFile     string        // Optional: path to the password-hash pepper file (default: ./pepper)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:       getEnvOrDefault("AUTH_ISSUER", "authcore"),
		CookieSecret: os.Getenv("AUTH_COOKIE_SECRET"),
		BearerSecret: os.Getenv("AUTH_BEARER_SECRET"),
		CookieSecure: getEnvBoolOrDefault("AUTH_COOKIE_SECURE", true),

		RedisAddr: getEnvOrDefault("REDIS_ADDR", "localhost:6379"),

		AccessTokenTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: getEnvDurationOrDefault("AUTH_REFRESH_TOKEN_TTL", 30*24*time.Hour),

		Algorithm:      getEnvOrDefault("AUTH_ALGORITHM", "EdDSA"),
		KeyGracePeriod: getEnvDurationOrDefault("AUTH_KEY_GRACE_PERIOD", 30*24*time.Hour),
		MasterKeyPath:  os.Getenv("AUTH_MASTER_KEY_PATH"),
		KeystoreFile:   getEnvOrDefault("AUTH_KEYSTORE_FILE", "keystore.db"),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
