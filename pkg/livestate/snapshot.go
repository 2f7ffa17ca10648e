package livestate

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the aggregated, point-in-time result of collecting every
// registered category. Categories whose provider failed to collect are
// omitted. The engine never retains a snapshot; ownership passes to the
// consumer.
type Snapshot struct {
	// ID uniquely identifies this collection.
	ID string `json:"id"`

	// TakenAt is when the collection ran.
	TakenAt time.Time `json:"taken_at"`

	// URL is the observed document's address at collection time.
	URL string `json:"url,omitempty"`

	// Entries holds one entry per successfully collected category,
	// in provider registration order.
	Entries []Entry `json:"entries"`
}

// Entry is one category's contribution to a snapshot.
type Entry struct {
	// Category names the kind of live state ("auth", "media", ...).
	Category string `json:"category"`

	// States holds the category's readings. Single-valued categories
	// have one element; per-entity categories (one per media player)
	// have one element per entity.
	States []Value `json:"states"`
}

// Get returns the entry for a category, if present.
func (s *Snapshot) Get(category string) (Entry, bool) {
	for _, entry := range s.Entries {
		if entry.Category == category {
			return entry, true
		}
	}
	return Entry{}, false
}

func newSnapshot(url string) *Snapshot {
	return &Snapshot{
		ID:      uuid.New().String(),
		TakenAt: time.Now(),
		URL:     url,
	}
}
