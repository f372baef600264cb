package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DONOR_COOLDOWN_DAYS", "")
	t.Setenv("ELIGIBLE_REGIONS", "")
	t.Setenv("MATCH_ASYNC_DISPATCH", "")

	cfg := Load()

	assert.Equal(t, 90*24*time.Hour, cfg.DonorCooldown)
	assert.Nil(t, cfg.EligibleRegions)
	assert.True(t, cfg.MatchAsyncDispatch)
	assert.Equal(t, 2*time.Minute, cfg.DispatchTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DONOR_COOLDOWN_DAYS", "120")
	t.Setenv("ELIGIBLE_REGIONS", "Sukolilo, Keputih ,,")
	t.Setenv("MATCH_ASYNC_DISPATCH", "false")
	t.Setenv("DISPATCH_TIMEOUT", "30s")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, 120*24*time.Hour, cfg.DonorCooldown)
	assert.Equal(t, []string{"Sukolilo", "Keputih"}, cfg.EligibleRegions)
	assert.False(t, cfg.MatchAsyncDispatch)
	assert.Equal(t, 30*time.Second, cfg.DispatchTimeout)
	assert.True(t, cfg.IsProduction())

	logger := NewLogger(cfg)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DONOR_COOLDOWN_DAYS", "ninety")
	t.Setenv("MINIO_USE_SSL", "maybe")

	cfg := Load()

	assert.Equal(t, 90*24*time.Hour, cfg.DonorCooldown)
	assert.False(t, cfg.MinIOUseSSL)
}
