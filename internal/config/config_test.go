package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, "https://api.github.com/zen", cfg.QuoteURL)
	assert.Equal(t, time.Second, cfg.TickInterval())
	assert.Equal(t, time.Second, cfg.TimeoutDelay())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL())
	assert.Equal(t, 64, cfg.MaxLiveTimers)
	assert.Equal(t, 200, cfg.ConsoleRetention)
	assert.Equal(t, 1000, cfg.MaxWindows)
	assert.Equal(t, "https://mockexperts.com", cfg.PromoURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EFFECTLAB_PORT", "8080")
	t.Setenv("EFFECTLAB_TICK_INTERVAL_MS", "250")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	v.Set("db_driver", "mysql")
	_, err := load(v)
	assert.ErrorContains(t, err, "unsupported db_driver")

	cfg := Config{Port: 3000, DBDriver: "sqlite", TickIntervalMS: 1, TimeoutDelayMS: 1, SessionTTLMinutes: 0}
	assert.Error(t, cfg.Validate())
}
