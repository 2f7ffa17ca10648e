package providers

import (
	"fmt"

	"github.com/pagepulse/pagepulse/pkg/livestate"
	"github.com/pagepulse/pagepulse/pkg/logging"
)

// AssembleConfig selects and configures the providers for one page.
type AssembleConfig struct {
	// URL is the observed page's address, matched against Rules.
	URL string

	// Auth configures the auth provider's indicator selectors.
	Auth AuthSelectors

	// Rules restricts categories to matching URLs.
	Rules []Rule

	// Disabled lists categories to leave out entirely.
	Disabled []string
}

// Assemble registers the bundled providers into a manager, applying the
// URL rules and disabled list. The registry must be assembled before
// the engine starts; it is not mutated mid-session.
func Assemble(mgr *livestate.Manager, cfg AssembleConfig, log *logging.Logger) error {
	rules, err := CompileRules(cfg.Rules)
	if err != nil {
		return err
	}

	disabled := make(map[string]bool, len(cfg.Disabled))
	for _, category := range cfg.Disabled {
		disabled[category] = true
	}

	candidates := []livestate.Provider{
		NewAuthProvider(cfg.Auth, log),
		NewMediaProvider(log),
	}

	for _, p := range candidates {
		category := p.Category()
		if disabled[category] {
			if log != nil {
				log.Infof("provider %q disabled by config", category)
			}
			continue
		}
		if !rules.Enabled(category, cfg.URL) {
			if log != nil {
				log.Infof("provider %q not enabled for %s", category, cfg.URL)
			}
			continue
		}
		if err := mgr.Register(p); err != nil {
			return fmt.Errorf("failed to register provider %q: %w", category, err)
		}
	}
	return nil
}
