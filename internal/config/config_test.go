package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_ConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("JWT_ACCESS_EXPIRY", "30m")
	t.Setenv("SWAP_LOCK_TTL", "5s")
	t.Setenv("SWAP_PAYMENT_TOKEN", "0xabc")
	t.Setenv("DEVNET_ENABLED", "false")
	t.Setenv("DEVNET_COLLECTIONS", "Apes:APE, ,Punks:PNK")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 5*time.Second, cfg.Swap.LockTTL)
	assert.Equal(t, "0xabc", cfg.Swap.PaymentToken)
	assert.False(t, cfg.Devnet.Enabled)
	assert.Equal(t, []string{"Apes:APE", "Punks:PNK"}, cfg.Devnet.Collections)
}

func TestLoad_ConfigFallbacks(t *testing.T) {
	t.Setenv("DB_PORT", "not-number")
	t.Setenv("JWT_ACCESS_EXPIRY", "bad-duration")
	t.Setenv("DEVNET_ENABLED", "maybe")
	t.Setenv("DEVNET_COLLECTIONS", " , ")

	cfg := Load()
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.True(t, cfg.Devnet.Enabled)
	assert.Equal(t, []string{"NftA:NFTA", "NftB:NFTB"}, cfg.Devnet.Collections)
	assert.Equal(t, "swap:events", cfg.Swap.EventsChannel)
	assert.Equal(t, 5*time.Minute, cfg.Swap.ChallengeTTL)
}
