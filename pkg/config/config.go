// Package config holds PagePulse's file-based configuration: scheduling
// intervals, provider settings, URL rules and browser options. Config is
// loaded once at startup and immutable afterwards; the engine never sees
// a config change mid-session.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pagepulse/pagepulse/pkg/poller"
	"github.com/pagepulse/pagepulse/pkg/providers"
)

// Config is the top-level PagePulse configuration.
type Config struct {
	Polling   PollingConfig   `yaml:"polling"`
	Providers ProvidersConfig `yaml:"providers"`
	Browser   BrowserConfig   `yaml:"browser"`
}

// PollingConfig configures the sampling engine. All values are
// milliseconds in YAML.
type PollingConfig struct {
	IntervalMs         int `yaml:"interval_ms"`
	ActiveIntervalMs   int `yaml:"active_interval_ms"`
	ActivityCooldownMs int `yaml:"activity_cooldown_ms"`
	MutationDebounceMs int `yaml:"mutation_debounce_ms"`
}

// ProvidersConfig configures the bundled state providers.
type ProvidersConfig struct {
	// Auth holds the sign-in indicator selectors. Empty uses defaults.
	Auth providers.AuthSelectors `yaml:"auth"`

	// Rules restricts categories to matching page URLs.
	Rules []providers.Rule `yaml:"rules"`

	// Disabled lists categories that should not be registered at all.
	Disabled []string `yaml:"disabled"`
}

// BrowserConfig configures the playwright session.
type BrowserConfig struct {
	Headless       bool    `yaml:"headless"`
	ViewportWidth  int     `yaml:"viewport_width"`
	ViewportHeight int     `yaml:"viewport_height"`
	TimeoutMs      float64 `yaml:"timeout_ms"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Polling: PollingConfig{
			IntervalMs:         int(poller.DefaultInterval / time.Millisecond),
			ActiveIntervalMs:   int(poller.DefaultActiveInterval / time.Millisecond),
			ActivityCooldownMs: int(poller.DefaultActivityCooldown / time.Millisecond),
			MutationDebounceMs: int(poller.DefaultMutationDebounce / time.Millisecond),
		},
		Browser: BrowserConfig{
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 720,
			TimeoutMs:      30000,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field invariants.
func (c *Config) Validate() error {
	if err := c.Polling.Engine().Validate(); err != nil {
		return fmt.Errorf("polling: %w", err)
	}
	if _, err := providers.CompileRules(c.Providers.Rules); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser: viewport must be positive, got %dx%d",
			c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}
	return nil
}

// Engine converts the YAML milliseconds into the engine's Config.
func (p PollingConfig) Engine() poller.Config {
	return poller.Config{
		Interval:         time.Duration(p.IntervalMs) * time.Millisecond,
		ActiveInterval:   time.Duration(p.ActiveIntervalMs) * time.Millisecond,
		ActivityCooldown: time.Duration(p.ActivityCooldownMs) * time.Millisecond,
		MutationDebounce: time.Duration(p.MutationDebounceMs) * time.Millisecond,
	}
}

// CategoryDisabled reports whether a category is switched off entirely.
func (c *Config) CategoryDisabled(category string) bool {
	for _, disabled := range c.Providers.Disabled {
		if disabled == category {
			return true
		}
	}
	return false
}
