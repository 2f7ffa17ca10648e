package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRulesRejectsBadPattern(t *testing.T) {
	_, err := CompileRules([]Rule{
		{Category: CategoryMedia, URLPatterns: []string{"https://[invalid"}},
	})
	assert.ErrorContains(t, err, "invalid url pattern")
}

func TestCompileRulesRejectsEmptyCategory(t *testing.T) {
	_, err := CompileRules([]Rule{{URLPatterns: []string{"*"}}})
	assert.ErrorContains(t, err, "empty category")
}

func TestRuleSetEnabled(t *testing.T) {
	rs, err := CompileRules([]Rule{
		{Category: CategoryMedia, URLPatterns: []string{
			"https://*.youtube.com/*",
			"https://open.spotify.com/*",
		}},
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		category string
		url      string
		enabled  bool
	}{
		{name: "matching pattern", category: CategoryMedia, url: "https://www.youtube.com/watch?v=x", enabled: true},
		{name: "second pattern", category: CategoryMedia, url: "https://open.spotify.com/track/1", enabled: true},
		{name: "non-matching url", category: CategoryMedia, url: "https://example.com/", enabled: false},
		{name: "unrestricted category", category: CategoryAuth, url: "https://example.com/", enabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.enabled, rs.Enabled(tt.category, tt.url))
		})
	}
}

func TestRuleSetNoPatternsLeavesCategoryUnrestricted(t *testing.T) {
	rs, err := CompileRules([]Rule{{Category: CategoryMedia, URLPatterns: nil}})
	require.NoError(t, err)
	assert.True(t, rs.Enabled(CategoryMedia, "https://example.com/"))
}
