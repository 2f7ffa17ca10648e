// Package livestate defines the state-provider contract and the manager
// that aggregates every provider's reading into a single point-in-time
// snapshot of a live page.
//
// A provider owns one category of live state ("auth", "media", ...). The
// synchronous Collect call must be cheap and never touch the page
// asynchronously; providers whose truth requires asynchronous reads
// implement the AsyncRefreshable capability and keep an internal cache
// that Refresh updates and Collect serves from.
package livestate

import (
	"context"

	"github.com/pagepulse/pagepulse/pkg/dom"
)

// Value is one category's state reading. Providers return concrete,
// JSON-serializable values (see pkg/providers for the shipped types).
type Value interface{}

// Provider reads one category of live state from a document.
//
// Collect must be synchronous and non-blocking: it reads the document or
// the provider's own cache, performs no I/O, and never fails just because
// the state is absent — absence is an empty result, not an error. Collect
// must tolerate being called before any Refresh has happened.
//
// Dispose releases retained resources. It is idempotent and called at
// most once by the owning manager during shutdown.
type Provider interface {
	Category() string
	Collect(root dom.Document) ([]Value, error)
	Dispose()
}

// AsyncRefreshable is the optional capability for providers whose state
// requires asynchronous reads (e.g. querying a live media element). The
// scheduler calls Refresh before each snapshot so Collect serves fresh
// cache contents.
//
// A failure reading one underlying entity must not abort the refresh of
// the others and must not surface from Refresh; the affected entity's
// entry is simply dropped from the cache. Refresh only returns an error
// when the document itself cannot be queried at all.
type AsyncRefreshable interface {
	Provider
	Refresh(ctx context.Context, root dom.Document) error
}
