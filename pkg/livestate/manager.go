package livestate

import (
	"fmt"
	"sync"

	"github.com/pagepulse/pagepulse/pkg/dom"
	"github.com/pagepulse/pagepulse/pkg/logging"
)

// Manager holds the set of registered state providers and assembles
// snapshots across them. The registry is populated before the polling
// engine starts and is not mutated while it runs.
type Manager struct {
	mu         sync.RWMutex
	providers  map[string]Provider
	categories []string // registration order, for deterministic snapshots
	disposed   bool
	log        *logging.Logger
}

// NewManager creates an empty provider registry.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		providers: make(map[string]Provider),
		log:       log,
	}
}

// Register adds a provider under its category. Categories are unique;
// registering a second provider for the same category is an error.
func (m *Manager) Register(p Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return fmt.Errorf("manager is disposed")
	}

	category := p.Category()
	if category == "" {
		return fmt.Errorf("provider has empty category")
	}
	if _, exists := m.providers[category]; exists {
		return fmt.Errorf("provider for category %q already registered", category)
	}

	m.providers[category] = p
	m.categories = append(m.categories, category)
	return nil
}

// ProviderByCategory returns the provider registered for a category.
// The engine uses this for capability-specific access, e.g. to refresh
// one category ahead of a snapshot.
func (m *Manager) ProviderByCategory(category string) (Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.providers[category]
	return p, ok
}

// Refreshables returns the registered providers that implement the
// AsyncRefreshable capability, in registration order.
func (m *Manager) Refreshables() []AsyncRefreshable {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []AsyncRefreshable
	for _, category := range m.categories {
		if r, ok := m.providers[category].(AsyncRefreshable); ok {
			out = append(out, r)
		}
	}
	return out
}

// Categories returns the registered category names in registration order.
func (m *Manager) Categories() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.categories))
	copy(out, m.categories)
	return out
}

// CollectSnapshot reads every provider synchronously and assembles one
// snapshot, preserving registration order. Aggregation is fail-isolated:
// a provider that errors or panics is logged and its category omitted;
// the snapshot as a whole always succeeds.
func (m *Manager) CollectSnapshot(root dom.Document) *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := newSnapshot(root.URL())
	for _, category := range m.categories {
		states, err := m.collectOne(m.providers[category], root)
		if err != nil {
			if m.log != nil {
				m.log.Warnf("provider %q failed to collect: %v", category, err)
			}
			continue
		}
		snapshot.Entries = append(snapshot.Entries, Entry{
			Category: category,
			States:   states,
		})
	}
	return snapshot
}

// collectOne isolates a single provider read, turning a panic into an
// error so one misbehaving provider cannot take down the snapshot.
func (m *Manager) collectOne(p Provider, root dom.Document) (states []Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panicked: %v", r)
		}
	}()
	return p.Collect(root)
}

// Dispose releases every registered provider. Idempotent; a disposed
// manager rejects further registrations and collects empty snapshots.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return
	}
	m.disposed = true

	for _, category := range m.categories {
		m.providers[category].Dispose()
	}
	m.providers = make(map[string]Provider)
	m.categories = nil
}
