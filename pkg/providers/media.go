package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pagepulse/pagepulse/pkg/dom"
	"github.com/pagepulse/pagepulse/pkg/livestate"
	"github.com/pagepulse/pagepulse/pkg/logging"
)

// CategoryMedia is the category name MediaProvider registers under.
const CategoryMedia = "media"

// mediaSelector finds the page's media players.
const mediaSelector = "video, audio"

// mediaProbeScript reads playback facts from one media element. It runs
// inside the page, so a live document is required; static documents make
// Refresh a no-op for the affected element.
const mediaProbeScript = `el => ({
	tag: el.tagName.toLowerCase(),
	src: el.currentSrc || el.getAttribute('src') || '',
	title: el.title || '',
	paused: !!el.paused,
	currentTime: el.currentTime || 0,
	duration: Number.isFinite(el.duration) ? el.duration : 0
})`

// MediaState is one media player's snapshot value.
type MediaState struct {
	PlayerID string  `json:"player_id"`
	Kind     string  `json:"kind"` // "video" or "audio"
	Source   string  `json:"source,omitempty"`
	Title    string  `json:"title,omitempty"`
	Playing  bool    `json:"playing"`
	Position float64 `json:"position_seconds"`
	Duration float64 `json:"duration_seconds"`
}

// MediaProvider tracks the playback state of every media element on the
// page. Reading playback position requires evaluating script against a
// live element, so the provider implements the AsyncRefreshable
// capability: Refresh probes the page and rebuilds an internal cache,
// and the synchronous Collect serves cache contents only.
//
// The cache is exclusively owned by the provider. It is replaced
// wholesale on every Refresh, which also prunes players that have left
// the page. A probe failure on one player drops only that player's
// entry; the rest still update.
type MediaProvider struct {
	mu    sync.RWMutex
	cache map[string]MediaState
	log   *logging.Logger
}

// NewMediaProvider creates a media provider with an empty cache.
func NewMediaProvider(log *logging.Logger) *MediaProvider {
	return &MediaProvider{
		cache: make(map[string]MediaState),
		log:   log,
	}
}

// Category returns the provider's category name.
func (p *MediaProvider) Category() string {
	return CategoryMedia
}

// Refresh discovers the page's media elements and probes each one for
// playback state, then swaps the result in as the new cache. Only a
// failure to query the document at all is returned as an error;
// per-player probe failures are logged and skipped.
func (p *MediaProvider) Refresh(ctx context.Context, root dom.Document) error {
	elements, err := root.QuerySelectorAll(mediaSelector)
	if err != nil {
		return fmt.Errorf("failed to query media elements: %w", err)
	}

	fresh := make(map[string]MediaState, len(elements))
	for i, el := range elements {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		state, err := p.probe(el, i)
		if err != nil {
			if p.log != nil {
				p.log.Debugf("media probe failed for player %d: %v", i, err)
			}
			continue
		}
		fresh[state.PlayerID] = state
	}

	p.mu.Lock()
	p.cache = fresh
	p.mu.Unlock()
	return nil
}

// probe evaluates the playback script against one element and maps the
// result into a MediaState.
func (p *MediaProvider) probe(el dom.Element, index int) (MediaState, error) {
	result, err := el.Evaluate(mediaProbeScript)
	if err != nil {
		return MediaState{}, err
	}

	fields, ok := result.(map[string]interface{})
	if !ok {
		return MediaState{}, fmt.Errorf("unexpected probe result type %T", result)
	}

	state := MediaState{
		Kind:     asString(fields["tag"]),
		Source:   asString(fields["src"]),
		Title:    asString(fields["title"]),
		Playing:  !asBool(fields["paused"]),
		Position: asFloat(fields["currentTime"]),
		Duration: asFloat(fields["duration"]),
	}
	state.PlayerID = playerID(el, state, index)
	return state, nil
}

// playerID derives a stable identity for a player: its DOM id when it
// has one, otherwise kind and source, otherwise document position.
func playerID(el dom.Element, state MediaState, index int) string {
	if id, ok, err := el.GetAttribute("id"); err == nil && ok && id != "" {
		return id
	}
	if state.Source != "" {
		return fmt.Sprintf("%s:%s", state.Kind, state.Source)
	}
	return fmt.Sprintf("%s#%d", state.Kind, index)
}

// Collect returns the cached state of every known player, sorted by
// player id for deterministic snapshots. It never touches the page;
// before the first Refresh it reports no players.
func (p *MediaProvider) Collect(dom.Document) ([]livestate.Value, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.cache))
	for id := range p.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	states := make([]livestate.Value, 0, len(ids))
	for _, id := range ids {
		states = append(states, p.cache[id])
	}
	return states, nil
}

// Dispose drops the cache. Idempotent.
func (p *MediaProvider) Dispose() {
	p.mu.Lock()
	p.cache = make(map[string]MediaState)
	p.mu.Unlock()
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
