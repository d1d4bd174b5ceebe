package config

import (
	"fmt"
	"os"
)

const defaultCatalogURL = "https://assets.upstox.com/market-quote/instruments/exchange/NSE.json.gz"

// Config holds everything read from the environment at startup.
type Config struct {
	// AccessToken is the Upstox bearer token. It may be empty when a redis
	// URL is configured: the /auth/gettoken flow publishes the token there.
	AccessToken string
	GroqAPIKey  string
	RedisURL    string // optional; empty disables the shared cache and token hand-off
	ListenAddr  string
	CatalogURL  string
}

// MissingError reports a required environment variable that was not set.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("config: required env var %s not set", e.Key)
}

// Load reads configuration from the environment. Credentials are validated
// up front so a misconfigured process fails before any fetch is attempted.
func Load() (*Config, error) {
	cfg := &Config{
		AccessToken: os.Getenv("UPSTOX_ACCESS_TOKEN"),
		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		RedisURL:    os.Getenv("REDIS_URL"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		CatalogURL:  getEnv("CATALOG_URL", defaultCatalogURL),
	}
	if cfg.AccessToken == "" && cfg.RedisURL == "" {
		return nil, &MissingError{Key: "UPSTOX_ACCESS_TOKEN"}
	}
	if cfg.GroqAPIKey == "" {
		return nil, &MissingError{Key: "GROQ_API_KEY"}
	}
	return cfg, nil
}

// BearerToken returns the Upstox access token, preferring the environment and
// falling back to the token published in redis by the OAuth callback.
func (c *Config) BearerToken(rc *RedisClient) (string, error) {
	if c.AccessToken != "" {
		return c.AccessToken, nil
	}
	if rc != nil {
		if tok, err := rc.GetVal("access_token"); err == nil && tok != "" {
			return tok, nil
		}
	}
	return "", &MissingError{Key: "UPSTOX_ACCESS_TOKEN"}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
