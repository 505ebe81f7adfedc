package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all toolkit configuration loaded from environment variables.
// All required fields are validated at load time to ensure fail-fast behavior.
type Config struct {
	// Solana configuration
	SolanaRPCURL string
	Commitment   string

	// Signing configuration
	KeypairPath string

	// NATS configuration (optional; empty disables event publishing)
	NATSURL string

	// Submission configuration
	SkipPreflight bool
	MaxRetries    int

	// Logging configuration
	LogLevel string
}

// Load reads configuration from environment variables and validates all
// required fields. Returns an error if any required configuration is
// missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.SolanaRPCURL = os.Getenv("SOLANA_RPC_URL")
	if cfg.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SOLANA_RPC_URL is required"))
	}

	cfg.Commitment = getEnvOrDefault("SOLANA_COMMITMENT", "confirmed")
	switch cfg.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		errs = append(errs, fmt.Errorf("SOLANA_COMMITMENT: invalid commitment %q", cfg.Commitment))
	}

	cfg.KeypairPath = os.Getenv("SOLANA_KEYPAIR_PATH")
	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	skipPreflight, err := parseBool("SKIP_PREFLIGHT", false)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.SkipPreflight = skipPreflight
	}

	maxRetries, err := parseInt("SEND_MAX_RETRIES", 0)
	if err != nil {
		errs = append(errs, err)
	} else if maxRetries < 0 {
		errs = append(errs, fmt.Errorf("SEND_MAX_RETRIES must not be negative"))
	} else {
		cfg.MaxRetries = maxRetries
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for CLI initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseBool parses a boolean from an environment variable or uses a default.
func parseBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q: %w", key, value, err)
	}
	return result, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}
