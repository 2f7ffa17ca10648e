package providers

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Rule restricts a provider category to pages whose URL matches one of
// the patterns. Patterns use glob syntax, e.g. "https://*.youtube.com/*".
// A category with no rule is enabled on every page.
type Rule struct {
	Category    string   `yaml:"category"`
	URLPatterns []string `yaml:"url_patterns"`
}

// RuleSet holds compiled rules, ready for per-page matching.
type RuleSet struct {
	byCategory map[string][]glob.Glob
}

// CompileRules validates and compiles rules. A pattern that does not
// compile fails the whole set; rules are configuration, and a silent
// partial compile would enable providers on pages the user excluded.
func CompileRules(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{byCategory: make(map[string][]glob.Glob)}
	for _, rule := range rules {
		if rule.Category == "" {
			return nil, fmt.Errorf("rule has empty category")
		}
		for _, pattern := range rule.URLPatterns {
			g, err := glob.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid url pattern %q for category %q: %w", pattern, rule.Category, err)
			}
			rs.byCategory[rule.Category] = append(rs.byCategory[rule.Category], g)
		}
	}
	return rs, nil
}

// Enabled reports whether a category's provider should run on a page.
// Categories without rules are always enabled; categories with rules
// need at least one pattern to match the URL.
func (rs *RuleSet) Enabled(category, url string) bool {
	globs, restricted := rs.byCategory[category]
	if !restricted {
		return true
	}
	for _, g := range globs {
		if g.Match(url) {
			return true
		}
	}
	return false
}
