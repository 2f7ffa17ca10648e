package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagepulse/pagepulse/pkg/providers"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagepulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Polling.IntervalMs)
	assert.Equal(t, 1000, cfg.Polling.ActiveIntervalMs)
	assert.Equal(t, 3000, cfg.Polling.ActivityCooldownMs)
	assert.Equal(t, 100, cfg.Polling.MutationDebounceMs)
	assert.True(t, cfg.Browser.Headless)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
polling:
  interval_ms: 10000
  active_interval_ms: 2000
providers:
  auth:
    signed_in: ["#profile-menu"]
  rules:
    - category: media
      url_patterns: ["https://*.youtube.com/*"]
  disabled: ["forms"]
browser:
  headless: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Polling.IntervalMs)
	assert.Equal(t, 2000, cfg.Polling.ActiveIntervalMs)
	// Untouched fields keep their defaults.
	assert.Equal(t, 3000, cfg.Polling.ActivityCooldownMs)
	assert.Equal(t, []string{"#profile-menu"}, cfg.Providers.Auth.SignedIn)
	require.Len(t, cfg.Providers.Rules, 1)
	assert.Equal(t, providers.CategoryMedia, cfg.Providers.Rules[0].Category)
	assert.False(t, cfg.Browser.Headless)
	assert.True(t, cfg.CategoryDisabled("forms"))
	assert.False(t, cfg.CategoryDisabled("auth"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "polling: [not a map")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadRejectsInvalidIntervals(t *testing.T) {
	path := writeConfig(t, `
polling:
  interval_ms: 1000
  active_interval_ms: 4000
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "must not exceed")
}

func TestLoadRejectsBadRulePattern(t *testing.T) {
	path := writeConfig(t, `
providers:
  rules:
    - category: media
      url_patterns: ["https://[broken"]
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid url pattern")
}

func TestEngineConversion(t *testing.T) {
	p := PollingConfig{
		IntervalMs:         5000,
		ActiveIntervalMs:   1000,
		ActivityCooldownMs: 3000,
		MutationDebounceMs: 100,
	}
	engineCfg := p.Engine()

	assert.Equal(t, 5*time.Second, engineCfg.Interval)
	assert.Equal(t, time.Second, engineCfg.ActiveInterval)
	assert.Equal(t, 3*time.Second, engineCfg.ActivityCooldown)
	assert.Equal(t, 100*time.Millisecond, engineCfg.MutationDebounce)
}

func TestValidateViewport(t *testing.T) {
	cfg := Default()
	cfg.Browser.ViewportWidth = 0
	assert.ErrorContains(t, cfg.Validate(), "viewport")
}
