package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiredFields(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOLANA_RPC_URL is required")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "https://api.devnet.solana.com")
	t.Setenv("SOLANA_COMMITMENT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SKIP_PREFLIGHT", "")
	t.Setenv("SEND_MAX_RETRIES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.devnet.solana.com", cfg.SolanaRPCURL)
	assert.Equal(t, "confirmed", cfg.Commitment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.SkipPreflight)
	assert.Equal(t, 0, cfg.MaxRetries)
}

func TestLoad_FullConfiguration(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")
	t.Setenv("SOLANA_COMMITMENT", "finalized")
	t.Setenv("SOLANA_KEYPAIR_PATH", "/tmp/id.json")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("SKIP_PREFLIGHT", "true")
	t.Setenv("SEND_MAX_RETRIES", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "finalized", cfg.Commitment)
	assert.Equal(t, "/tmp/id.json", cfg.KeypairPath)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.True(t, cfg.SkipPreflight)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidCommitment(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "https://api.devnet.solana.com")
	t.Setenv("SOLANA_COMMITMENT", "eventually")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid commitment")
}

func TestLoad_InvalidMaxRetries(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "https://api.devnet.solana.com")
	t.Setenv("SOLANA_COMMITMENT", "")
	t.Setenv("SEND_MAX_RETRIES", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid integer")
}

func TestLoad_NegativeMaxRetries(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "https://api.devnet.solana.com")
	t.Setenv("SOLANA_COMMITMENT", "")
	t.Setenv("SEND_MAX_RETRIES", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}
