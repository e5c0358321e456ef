// internal/config/config.go
//
// Runtime configuration for the API server.
// Values come from the process environment; main() runs godotenv.Load()
// first so a local `.env` file can fill in development defaults.
//
// The Config is built once at startup and handed to the components that need
// it (token service, store connector, GitHub client). Nothing else reads the
// environment.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultTokenTTL is the lifetime of issued bearer tokens.
const DefaultTokenTTL = 360000 * time.Second

// ErrMissingSecret is returned when JWT_SECRET is unset.
var ErrMissingSecret = errors.New("config: JWT_SECRET is required")

// Config holds every setting the server reads at startup.
type Config struct {
	Port           string
	DatabaseURI    string
	DatabaseName   string
	JWTSecret      string
	TokenTTL       time.Duration
	LogLevel       string
	ClientOrigin   string
	RequestTimeout time.Duration

	GitHubAPIURL   string
	GitHubClientID string
	GitHubSecret   string
}

// Load builds a Config from the environment, applying defaults for anything unset.
func Load() (*Config, error) {
	c := &Config{
		Port:           getEnv("PORT", "5000"),
		DatabaseURI:    getEnv("DATABASE_URI", getEnv("MONGO_URI", "mongodb://localhost:27017")),
		DatabaseName:   getEnv("DATABASE_NAME", "connect2pros"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:3000"),
		GitHubAPIURL:   getEnv("GITHUB_API_URL", "https://api.github.com"),
		GitHubClientID: os.Getenv("GITHUB_CLIENT_ID"),
		GitHubSecret:   os.Getenv("GITHUB_SECRET"),
	}
	if c.JWTSecret == "" {
		return nil, ErrMissingSecret
	}

	ttl, err := envSeconds("JWT_TTL_SECONDS", DefaultTokenTTL)
	if err != nil {
		return nil, err
	}
	c.TokenTTL = ttl

	timeout, err := envDuration("REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	c.RequestTimeout = timeout

	return c, nil
}

// Addr is the listen address derived from Port.
func (c *Config) Addr() string { return ":" + c.Port }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envSeconds(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive number of seconds, got %q", k, v)
	}
	return time.Duration(n) * time.Second, nil
}

func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive duration, got %q", k, v)
	}
	return d, nil
}
