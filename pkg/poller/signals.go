package poller

// ActivityKind names one user-interaction event the engine treats as
// activity. The set mirrors what a host page can dispatch.
type ActivityKind string

const (
	ActivityPointerMove ActivityKind = "pointermove"
	ActivityKeyDown     ActivityKind = "keydown"
	ActivityScroll      ActivityKind = "scroll"
	ActivityPointerDown ActivityKind = "pointerdown"
	ActivityTouchStart  ActivityKind = "touchstart"
)

// ActivityKinds returns the full set of interaction events a signal
// source should listen for.
func ActivityKinds() []ActivityKind {
	return []ActivityKind{
		ActivityPointerMove,
		ActivityKeyDown,
		ActivityScroll,
		ActivityPointerDown,
		ActivityTouchStart,
	}
}

// SignalSource feeds the engine the page's activity and structural-change
// signals. The browser-backed implementation lives in pkg/browser; tests
// drive the engine with channel-backed fakes.
//
// Attach installs the underlying listeners and observer; Detach removes
// them. Both are idempotent. A source that cannot observe mutations
// (e.g. the page has no body yet) attaches its activity listeners and
// simply never delivers on Mutations — the engine degrades to
// timer-driven sampling for structural changes.
type SignalSource interface {
	// Attach installs activity listeners and the mutation observer.
	Attach() error

	// Activity delivers one value per detected user interaction.
	Activity() <-chan ActivityKind

	// Mutations delivers one value per structural-change notification
	// (additions/removals anywhere under the document body). Bursts are
	// NOT coalesced here; the engine debounces.
	Mutations() <-chan struct{}

	// Detach removes listeners and disconnects the observer.
	Detach() error
}
