package livestate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagepulse/pagepulse/pkg/dom"
)

// fakeDocument satisfies dom.Document without any backing page.
type fakeDocument struct {
	url string
}

func (d *fakeDocument) QuerySelector(string) (dom.Element, error)      { return nil, nil }
func (d *fakeDocument) QuerySelectorAll(string) ([]dom.Element, error) { return nil, nil }
func (d *fakeDocument) URL() string                                    { return d.url }

// fakeProvider is a scriptable synchronous provider.
type fakeProvider struct {
	category  string
	states    []Value
	err       error
	panicking bool
	collects  int
	disposals int
}

func (p *fakeProvider) Category() string { return p.category }

func (p *fakeProvider) Collect(dom.Document) ([]Value, error) {
	p.collects++
	if p.panicking {
		panic("provider blew up")
	}
	return p.states, p.err
}

func (p *fakeProvider) Dispose() { p.disposals++ }

// fakeRefreshable adds the AsyncRefreshable capability.
type fakeRefreshable struct {
	fakeProvider
	refreshes int
}

func (p *fakeRefreshable) Refresh(context.Context, dom.Document) error {
	p.refreshes++
	return nil
}

func TestRegisterRejectsDuplicateCategory(t *testing.T) {
	mgr := NewManager(nil)

	require.NoError(t, mgr.Register(&fakeProvider{category: "auth"}))
	err := mgr.Register(&fakeProvider{category: "auth"})
	assert.ErrorContains(t, err, "already registered")
}

func TestRegisterRejectsEmptyCategory(t *testing.T) {
	mgr := NewManager(nil)
	assert.Error(t, mgr.Register(&fakeProvider{}))
}

func TestCollectSnapshotPreservesRegistrationOrder(t *testing.T) {
	mgr := NewManager(nil)
	for _, category := range []string{"media", "auth", "forms"} {
		require.NoError(t, mgr.Register(&fakeProvider{category: category, states: []Value{category + "-state"}}))
	}

	snapshot := mgr.CollectSnapshot(&fakeDocument{url: "https://example.com"})

	require.Len(t, snapshot.Entries, 3)
	assert.Equal(t, "media", snapshot.Entries[0].Category)
	assert.Equal(t, "auth", snapshot.Entries[1].Category)
	assert.Equal(t, "forms", snapshot.Entries[2].Category)
	assert.Equal(t, "https://example.com", snapshot.URL)
	assert.NotEmpty(t, snapshot.ID)
	assert.False(t, snapshot.TakenAt.IsZero())
}

func TestCollectSnapshotIsolatesFailingProviders(t *testing.T) {
	tests := []struct {
		name    string
		failing *fakeProvider
	}{
		{name: "provider error", failing: &fakeProvider{category: "bad", err: errors.New("no dice")}},
		{name: "provider panic", failing: &fakeProvider{category: "bad", panicking: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := NewManager(nil)
			require.NoError(t, mgr.Register(&fakeProvider{category: "auth", states: []Value{"ok"}}))
			require.NoError(t, mgr.Register(tt.failing))
			require.NoError(t, mgr.Register(&fakeProvider{category: "media", states: []Value{"ok"}}))

			snapshot := mgr.CollectSnapshot(&fakeDocument{})

			// The failing category is omitted; the others survive.
			require.Len(t, snapshot.Entries, 2)
			_, found := snapshot.Get("bad")
			assert.False(t, found)

			auth, found := snapshot.Get("auth")
			require.True(t, found)
			assert.Equal(t, []Value{"ok"}, auth.States)
		})
	}
}

func TestCollectSnapshotAllProvidersFailing(t *testing.T) {
	mgr := NewManager(nil)
	require.NoError(t, mgr.Register(&fakeProvider{category: "auth", err: errors.New("down")}))

	snapshot := mgr.CollectSnapshot(&fakeDocument{})
	assert.Empty(t, snapshot.Entries)
	assert.NotEmpty(t, snapshot.ID)
}

func TestProviderByCategory(t *testing.T) {
	mgr := NewManager(nil)
	auth := &fakeProvider{category: "auth"}
	require.NoError(t, mgr.Register(auth))

	got, ok := mgr.ProviderByCategory("auth")
	require.True(t, ok)
	assert.Same(t, Provider(auth), got)

	_, ok = mgr.ProviderByCategory("media")
	assert.False(t, ok)
}

func TestRefreshablesDetectsCapability(t *testing.T) {
	mgr := NewManager(nil)
	media := &fakeRefreshable{fakeProvider: fakeProvider{category: "media"}}
	require.NoError(t, mgr.Register(&fakeProvider{category: "auth"}))
	require.NoError(t, mgr.Register(media))

	refreshables := mgr.Refreshables()
	require.Len(t, refreshables, 1)
	assert.Equal(t, "media", refreshables[0].Category())
}

func TestDisposeFansOutOnce(t *testing.T) {
	mgr := NewManager(nil)
	auth := &fakeProvider{category: "auth"}
	media := &fakeProvider{category: "media"}
	require.NoError(t, mgr.Register(auth))
	require.NoError(t, mgr.Register(media))

	mgr.Dispose()
	mgr.Dispose() // idempotent

	assert.Equal(t, 1, auth.disposals)
	assert.Equal(t, 1, media.disposals)
}

func TestDisposedManagerNeverCollectsProviders(t *testing.T) {
	mgr := NewManager(nil)
	auth := &fakeProvider{category: "auth"}
	require.NoError(t, mgr.Register(auth))

	mgr.Dispose()
	snapshot := mgr.CollectSnapshot(&fakeDocument{})

	assert.Empty(t, snapshot.Entries)
	assert.Zero(t, auth.collects)
	assert.Error(t, mgr.Register(&fakeProvider{category: "late"}))
}

func TestSnapshotGet(t *testing.T) {
	snapshot := &Snapshot{Entries: []Entry{{Category: "auth", States: []Value{"in"}}}}

	entry, ok := snapshot.Get("auth")
	require.True(t, ok)
	assert.Equal(t, "auth", entry.Category)

	_, ok = snapshot.Get("media")
	assert.False(t, ok)
}
