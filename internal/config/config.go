package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultJWTAccessTTL   = "24h"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultGatewayTimeout = "30s"
	defaultBackendBaseURL = "http://localhost:8080"
	defaultFrontendURL    = "http://localhost:3000"
)

// Config is everything the service reads from the environment. The payment
// controller never touches ambient state; gateway credentials and base URLs
// are injected from here at construction time.
type Config struct {
	AppEnv      string
	DatabaseURL string

	JWTSecret    string
	JWTAccessTTL time.Duration

	// SSLCommerz store credentials.
	StoreID        string
	StorePass      string
	SandboxMode    bool
	GatewayTimeout time.Duration

	// BackendBaseURL is used to build the success/fail/cancel/IPN callback
	// URLs handed to the gateway; FrontendBaseURL is where customers are
	// redirected after a callback.
	BackendBaseURL  string
	FrontendBaseURL string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", "blogink.db"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}

	cfg.StoreID = strings.TrimSpace(os.Getenv("SSLCZ_STORE_ID"))
	cfg.StorePass = strings.TrimSpace(os.Getenv("SSLCZ_STORE_PASS"))
	cfg.SandboxMode = parseBoolEnv("SSLCZ_SANDBOX", "true")
	cfg.GatewayTimeout, err = parseDurationEnv("SSLCZ_TIMEOUT", defaultGatewayTimeout)
	if err != nil {
		return nil, err
	}

	cfg.BackendBaseURL = strings.TrimRight(getEnv("BACKEND_URL", defaultBackendBaseURL), "/")
	cfg.FrontendBaseURL = strings.TrimRight(getEnv("FRONTEND_URL", defaultFrontendURL), "/")

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.GatewayTimeout <= 0 {
		return fmt.Errorf("SSLCZ_TIMEOUT must be > 0")
	}
	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.StoreID == "" || cfg.StorePass == "" {
			return fmt.Errorf("in prod/release SSLCZ_STORE_ID and SSLCZ_STORE_PASS must be set")
		}
		if cfg.SandboxMode {
			return fmt.Errorf("in prod/release SSLCZ_SANDBOX must be false")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
