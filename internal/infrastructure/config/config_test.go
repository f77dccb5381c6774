package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 15*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Settlement.GuardTTL)
	assert.Equal(t, "0.08", cfg.Tax.Rate)

	rate, err := cfg.Tax.TaxRate()
	require.NoError(t, err)
	assert.Equal(t, "0.08", rate.String())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_APP_PORT", "9090")
	t.Setenv("STOREFRONT_PAYMENT_BASE_URL", "https://pay.example")
	t.Setenv("STOREFRONT_TAX_RATE", "0.0725")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "https://pay.example", cfg.Payment.BaseURL)

	rate, err := cfg.Tax.TaxRate()
	require.NoError(t, err)
	assert.Equal(t, "0.0725", rate.String())
}

func TestLoadRejectsBadTaxRate(t *testing.T) {
	t.Setenv("STOREFRONT_TAX_RATE", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestTaxRateRejectsNegative(t *testing.T) {
	_, err := TaxConfig{Rate: "-0.08"}.TaxRate()
	assert.Error(t, err)
}
