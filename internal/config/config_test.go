package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PRICING_CALLOUT_FEE", "")
	t.Setenv("REMINDER_INTERVAL", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Pricing.CalloutFee.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, time.Hour, cfg.Reminder.Interval)
	assert.Equal(t, TransportLog, cfg.Notify.Transport)
	require.NotNil(t, cfg.Business.Location)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PRICING_CALLOUT_FEE", "150.50")
	t.Setenv("NOTIFY_TRANSPORT", "AMQP")
	t.Setenv("REMINDER_INTERVAL", "0s")
	t.Setenv("BUSINESS_TIMEZONE", "UTC")
	t.Setenv("CATALOG_SEED_ON_START", "false")

	cfg := Load()

	assert.Equal(t, "150.5", cfg.Pricing.CalloutFee.String())
	assert.Equal(t, TransportAMQP, cfg.Notify.Transport)
	assert.Zero(t, cfg.Reminder.Interval)
	assert.Equal(t, time.UTC.String(), cfg.Business.Location.String())
	assert.False(t, cfg.Catalog.SeedOnStart)
}

func TestGetDecimalOrDefault(t *testing.T) {
	def := decimal.NewFromInt(100)

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv("FEE", "abc")
		assert.True(t, getDecimalOrDefault("FEE", def).Equal(def))
	})
	t.Run("negative falls back", func(t *testing.T) {
		t.Setenv("FEE", "-5")
		assert.True(t, getDecimalOrDefault("FEE", def).Equal(def))
	})
}

func TestRequireEnv_Panics(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	assert.Panics(t, func() { requireEnv("JWT_SECRET") })
}

func TestOracleConfig_DSN(t *testing.T) {
	cfg := OracleConfig{Host: "db", Port: "1521", Service: "XE", User: "app", Password: `p"w`}
	assert.Equal(t, `user="app" password="p\"w" connectString="db:1521/XE"`, cfg.DSN())

	cfg.WalletPath = "/wallet"
	cfg.TNSAlias = "adb_high"
	assert.Contains(t, cfg.DSN(), `connectString="adb_high" configDir="/wallet"`)
}
