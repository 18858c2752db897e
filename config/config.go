/*
Package config loads runtime configuration from the environment.

A .env file is honored when present (local development); real deployments
set the variables directly. Port and database path stay on command-line
flags in cmd/server, matching how the binary is usually launched.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything not supplied via flags.
type Config struct {
	// GatewayURL is the payment provider's API base URL.
	GatewayURL string
	// GatewayKeyID and GatewayKeySecret are the provider credential pair.
	// The secret is also the HMAC key for payment signature verification.
	GatewayKeyID     string
	GatewayKeySecret string
	// OrderTTL bounds the time between order creation and verification.
	OrderTTL time.Duration
	// ReportsDir is where generated report files are written.
	ReportsDir string
}

// Load reads configuration from the environment, applying defaults for
// everything except the gateway secret.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		GatewayURL:       getenv("GATEWAY_URL", "https://api.razorpay.com"),
		GatewayKeyID:     os.Getenv("GATEWAY_KEY_ID"),
		GatewayKeySecret: os.Getenv("GATEWAY_KEY_SECRET"),
		OrderTTL:         30 * time.Minute,
		ReportsDir:       getenv("REPORTS_DIR", "./reports"),
	}

	if v := os.Getenv("ORDER_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid ORDER_TTL_MINUTES %q", v)
		}
		cfg.OrderTTL = time.Duration(minutes) * time.Minute
	}

	if cfg.GatewayKeySecret == "" {
		return nil, fmt.Errorf("GATEWAY_KEY_SECRET is not set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
