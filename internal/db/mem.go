package db

import (
	"context"
	"sync"

	"github.com/mithrel/notecards/pkg/api"
)

type memStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]api.Note
}

func newMemStore() *memStore {
	return &memStore{byID: make(map[string]api.Note)}
}

func (m *memStore) ListNotes(ctx context.Context) ([]api.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]api.Note, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, copyNote(m.byID[id]))
	}
	return out, nil
}

func (m *memStore) GetNote(ctx context.Context, id string) (api.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.byID[id]
	if !ok {
		return api.Note{}, ErrNotFound
	}
	return copyNote(n), nil
}

func (m *memStore) CreateNote(ctx context.Context, n api.Note) (api.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		return api.Note{}, ErrConflict
	}
	if _, ok := m.byID[n.ID]; ok {
		return api.Note{}, ErrConflict
	}
	n = copyNote(n)
	m.byID[n.ID] = n
	m.order = append(m.order, n.ID)
	return copyNote(n), nil
}

func (m *memStore) UpdateNote(ctx context.Context, n api.Note) (api.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[n.ID]
	if !ok {
		return api.Note{}, ErrNotFound
	}
	cur.Title, cur.Body, cur.Tags = n.Title, n.Body, append([]string{}, n.Tags...)
	m.byID[n.ID] = cur
	return copyNote(cur), nil
}

func (m *memStore) DeleteNote(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore) Close() error { return nil }

func copyNote(n api.Note) api.Note {
	n.Tags = append([]string{}, n.Tags...)
	return n
}
