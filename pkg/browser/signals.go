package browser

import (
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/pagepulse/pagepulse/pkg/logging"
	"github.com/pagepulse/pagepulse/pkg/poller"
)

// Binding names the page script calls back into Go on.
const (
	activityBinding = "pagepulseActivity"
	mutationBinding = "pagepulseMutation"
)

// installScript wires page-side listeners: one capture-phase listener
// per interaction event, plus a childList+subtree MutationObserver on
// the document body. Returns whether the observer could be installed;
// a page without a body gets activity listeners only.
const installScript = `(events) => {
	if (window.__pagepulse) return window.__pagepulse.observing;
	const state = { handlers: {}, observer: null, observing: false };
	for (const ev of events) {
		const handler = () => window.` + activityBinding + `(ev);
		state.handlers[ev] = handler;
		document.addEventListener(ev, handler, { passive: true, capture: true });
	}
	if (document.body) {
		state.observer = new MutationObserver(() => window.` + mutationBinding + `());
		state.observer.observe(document.body, { childList: true, subtree: true });
		state.observing = true;
	}
	window.__pagepulse = state;
	return state.observing;
}`

// teardownScript removes the listeners and disconnects the observer.
const teardownScript = `() => {
	const state = window.__pagepulse;
	if (!state) return;
	for (const [ev, handler] of Object.entries(state.handlers)) {
		document.removeEventListener(ev, handler, { capture: true });
	}
	if (state.observer) state.observer.disconnect();
	delete window.__pagepulse;
}`

var _ poller.SignalSource = (*Signals)(nil)

// Signals bridges a live page's interaction and mutation events into
// the channels the polling engine consumes. Events are forwarded with a
// non-blocking send: the engine only needs the fact that activity or a
// mutation happened, so dropping events under backpressure is harmless.
type Signals struct {
	page      playwright.Page
	log       *logging.Logger
	activity  chan poller.ActivityKind
	mutations chan struct{}

	mu       sync.Mutex
	exposed  bool
	attached bool
}

// Signals returns a detached signal bridge for the session's page.
func (s *Session) Signals(log *logging.Logger) *Signals {
	return NewSignals(s.Page, log)
}

// NewSignals creates a detached signal bridge for a page.
func NewSignals(page playwright.Page, log *logging.Logger) *Signals {
	return &Signals{
		page:      page,
		log:       log,
		activity:  make(chan poller.ActivityKind, 64),
		mutations: make(chan struct{}, 64),
	}
}

// Attach exposes the Go bindings and installs the page-side listeners
// and observer. Idempotent. A page without a document body degrades to
// activity-only signalling rather than failing.
func (s *Signals) Attach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return nil
	}

	// Bindings survive detach; playwright does not support unexposing,
	// so they are registered once and gated by the attached flag.
	if !s.exposed {
		if err := s.page.ExposeFunction(activityBinding, s.onActivity); err != nil {
			return fmt.Errorf("failed to expose activity binding: %w", err)
		}
		if err := s.page.ExposeFunction(mutationBinding, s.onMutation); err != nil {
			return fmt.Errorf("failed to expose mutation binding: %w", err)
		}
		s.exposed = true
	}

	kinds := poller.ActivityKinds()
	events := make([]interface{}, len(kinds))
	for i, kind := range kinds {
		events[i] = string(kind)
	}

	observing, err := s.page.Evaluate(installScript, events)
	if err != nil {
		return fmt.Errorf("failed to install page listeners: %w", err)
	}
	if installed, ok := observing.(bool); ok && !installed && s.log != nil {
		s.log.Warnf("document body not available, mutation observation disabled")
	}

	s.attached = true
	return nil
}

// Detach removes the page-side listeners and disconnects the observer.
// Idempotent; the channels stay open but go quiet.
func (s *Signals) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	s.attached = false

	if _, err := s.page.Evaluate(teardownScript); err != nil {
		return fmt.Errorf("failed to remove page listeners: %w", err)
	}
	return nil
}

// Activity delivers one value per user interaction on the page.
func (s *Signals) Activity() <-chan poller.ActivityKind {
	return s.activity
}

// Mutations delivers one value per structural-change notification.
func (s *Signals) Mutations() <-chan struct{} {
	return s.mutations
}

// onActivity is the exposed binding the page's event handlers call.
func (s *Signals) onActivity(args ...interface{}) interface{} {
	s.mu.Lock()
	attached := s.attached
	s.mu.Unlock()
	if !attached {
		return nil
	}

	kind := poller.ActivityKind("")
	if len(args) > 0 {
		if name, ok := args[0].(string); ok {
			kind = poller.ActivityKind(name)
		}
	}

	select {
	case s.activity <- kind:
	default:
	}
	return nil
}

// onMutation is the exposed binding the page's MutationObserver calls.
func (s *Signals) onMutation(...interface{}) interface{} {
	s.mu.Lock()
	attached := s.attached
	s.mu.Unlock()
	if !attached {
		return nil
	}

	select {
	case s.mutations <- struct{}{}:
	default:
	}
	return nil
}
