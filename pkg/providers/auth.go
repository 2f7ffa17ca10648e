// Package providers ships the state providers bundled with PagePulse:
// authentication status and media playback. Both read through the
// pkg/dom document boundary, so they work against a live playwright
// page and against static HTML alike.
package providers

import (
	"github.com/pagepulse/pagepulse/pkg/dom"
	"github.com/pagepulse/pagepulse/pkg/livestate"
	"github.com/pagepulse/pagepulse/pkg/logging"
)

// CategoryAuth is the category name AuthProvider registers under.
const CategoryAuth = "auth"

// AuthStatus is the detected authentication state of the page.
type AuthStatus string

const (
	StatusSignedIn  AuthStatus = "signed_in"
	StatusSignedOut AuthStatus = "signed_out"
	StatusUnknown   AuthStatus = "unknown"
)

// AuthState is the auth category's snapshot value.
type AuthState struct {
	Status AuthStatus `json:"status"`

	// Indicator is the selector whose match decided the status,
	// empty when the status is unknown.
	Indicator string `json:"indicator,omitempty"`
}

// AuthSelectors configures the page indicators the provider looks for.
// A visible match on any SignedIn selector wins over SignedOut.
type AuthSelectors struct {
	SignedIn  []string `yaml:"signed_in"`
	SignedOut []string `yaml:"signed_out"`
}

// DefaultAuthSelectors covers indicators common across mainstream sites.
func DefaultAuthSelectors() AuthSelectors {
	return AuthSelectors{
		SignedIn:  []string{"[data-user-id]", ".avatar", "a[href=/logout]", "a[href=/signout]"},
		SignedOut: []string{"a[href=/login]", "a[href=/signin]", ".login-button", ".sign-in"},
	}
}

// AuthProvider detects whether the page's user is signed in. It is
// purely synchronous: every Collect re-reads the document, no cache.
type AuthProvider struct {
	selectors AuthSelectors
	log       *logging.Logger
}

// NewAuthProvider creates an auth provider with the given indicator
// selectors. Zero-value selectors fall back to the defaults.
func NewAuthProvider(selectors AuthSelectors, log *logging.Logger) *AuthProvider {
	if len(selectors.SignedIn) == 0 && len(selectors.SignedOut) == 0 {
		selectors = DefaultAuthSelectors()
	}
	return &AuthProvider{selectors: selectors, log: log}
}

// Category returns the provider's category name.
func (p *AuthProvider) Category() string {
	return CategoryAuth
}

// Collect reads the document for auth indicators. Absence of every
// indicator is StatusUnknown, never an error; selector failures are
// skipped so one bad selector cannot blank the category.
func (p *AuthProvider) Collect(root dom.Document) ([]livestate.Value, error) {
	if selector, found := p.firstVisible(root, p.selectors.SignedIn); found {
		return []livestate.Value{AuthState{Status: StatusSignedIn, Indicator: selector}}, nil
	}
	if selector, found := p.firstVisible(root, p.selectors.SignedOut); found {
		return []livestate.Value{AuthState{Status: StatusSignedOut, Indicator: selector}}, nil
	}
	return []livestate.Value{AuthState{Status: StatusUnknown}}, nil
}

// firstVisible returns the first selector in the list with a visible match.
func (p *AuthProvider) firstVisible(root dom.Document, selectors []string) (string, bool) {
	for _, selector := range selectors {
		el, err := root.QuerySelector(selector)
		if err != nil {
			if p.log != nil {
				p.log.Debugf("auth indicator %q failed: %v", selector, err)
			}
			continue
		}
		if el == nil {
			continue
		}
		visible, err := el.IsVisible()
		if err != nil {
			if p.log != nil {
				p.log.Debugf("auth indicator %q visibility check failed: %v", selector, err)
			}
			continue
		}
		if visible {
			return selector, true
		}
	}
	return "", false
}

// Dispose releases nothing; the provider holds no resources.
func (p *AuthProvider) Dispose() {}
