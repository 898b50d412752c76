package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory keeps entries in process memory. It is used when no database is
// configured; entries are lost on restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry), now: time.Now}
}

func (m *Memory) InsertEntry(_ context.Context, e Entry) (Entry, error) {
	e, err := prepare(e, m.now())
	if err != nil {
		return Entry{}, err
	}
	m.mu.Lock()
	m.entries[e.ID] = e
	m.mu.Unlock()
	return e, nil
}

func (m *Memory) ListEntries(_ context.Context, owner string, limit int) ([]Entry, error) {
	m.mu.RLock()
	out := []Entry{}
	for _, e := range m.entries {
		if e.Owner == owner {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) DeleteEntry(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.Owner != owner {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}
