// Package store holds the client-side view of the notes known to the
// Remote Notes Service: a memoized list, invalidation, and text filtering.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/mithrel/notecards/pkg/api"
)

// Remote is the subset of the Remote Notes Service the store needs.
type Remote interface {
	List(ctx context.Context) ([]api.Note, error)
	Get(ctx context.Context, id string) (api.Note, error)
	Create(ctx context.Context, d api.Draft) (api.Note, error)
	Update(ctx context.Context, id string, d api.Draft) error
	Delete(ctx context.Context, id string) error
}

// Store caches the full note list for the session.
//
// The cache is either invalid (never loaded, or invalidated) or holds the
// complete list from one successful fetch. Loads that need a fetch are
// deduplicated; a fetch result is applied only if no invalidation happened
// while it was in flight.
type Store struct {
	remote Remote

	mu     sync.RWMutex
	notes  []api.Note
	loaded bool
	gen    uint64

	flight singleflight.Group
}

func New(r Remote) *Store {
	return &Store{remote: r}
}

// Load returns the cached notes, fetching the list first when the cache is
// invalid or force is set. On error the cache is left as it was.
func (s *Store) Load(ctx context.Context, force bool) ([]api.Note, error) {
	s.mu.RLock()
	if s.loaded && !force {
		out := cloneNotes(s.notes)
		s.mu.RUnlock()
		return out, nil
	}
	gen := s.gen
	s.mu.RUnlock()

	key := fmt.Sprintf("list:%d", gen)
	ch := s.flight.DoChan(key, func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		return s.fetch(context.WithoutCancel(ctx), gen)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneNotes(res.Val.([]api.Note)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) fetch(ctx context.Context, gen uint64) ([]api.Note, error) {
	notes, err := s.remote.List(ctx)
	if err != nil {
		log.Warnf("store: list failed: %v", err)
		return nil, fmt.Errorf("load notes: %w", err)
	}
	for i := range notes {
		notes[i].Normalize()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// Invalidated mid-flight; the caller still gets what it asked for.
		log.Debugf("store: discarding list from generation %d (now %d)", gen, s.gen)
		return notes, nil
	}
	s.notes = notes
	s.loaded = true
	log.Debugf("store: cached %d notes (generation %d)", len(notes), gen)
	return notes, nil
}

// FetchDetail always asks the service; summaries in the cache may lack the body.
func (s *Store) FetchDetail(ctx context.Context, id string) (api.Note, error) {
	n, err := s.remote.Get(ctx, id)
	if err != nil {
		return api.Note{}, fmt.Errorf("fetch note %s: %w", id, err)
	}
	n.Normalize()
	return n, nil
}

// Create sends d to the service. The cached list is kept as is, but a list
// already in flight is no longer applied; Load(ctx, true) observes the note.
func (s *Store) Create(ctx context.Context, d api.Draft) (api.Note, error) {
	n, err := s.remote.Create(ctx, d)
	if err != nil {
		return api.Note{}, fmt.Errorf("create note: %w", err)
	}
	s.advance()
	n.Normalize()
	log.Debugf("store: created note id=%s", n.ID)
	return n, nil
}

// Update replaces note id with d. Like Create it keeps the cached list and
// retires in-flight fetches, so Load(ctx, true) observes the change.
func (s *Store) Update(ctx context.Context, id string, d api.Draft) error {
	if err := s.remote.Update(ctx, id, d); err != nil {
		return fmt.Errorf("update note %s: %w", id, err)
	}
	s.advance()
	log.Debugf("store: updated note id=%s", id)
	return nil
}

// Remove deletes note id and invalidates the whole cache on success.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.remote.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	s.Invalidate()
	log.Debugf("store: deleted note id=%s", id)
	return nil
}

// Invalidate marks the cache stale so the next Load fetches.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.notes = nil
	s.loaded = false
	s.gen++
	s.mu.Unlock()
}

// advance starts a new generation without dropping the cached list.
func (s *Store) advance() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
}

// Cached returns the cached summary for id, if the cache holds it.
func (s *Store) Cached(id string) (api.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.ID == id {
			return cloneNote(n), true
		}
	}
	return api.Note{}, false
}

// Tags lists the distinct tags of the cached notes in first-seen order.
// Case variants of a tag collapse onto the first spelling seen.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	out := []string{}
	for _, n := range s.notes {
		for _, t := range n.Tags {
			k := strings.ToLower(strings.TrimSpace(t))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, strings.TrimSpace(t))
		}
	}
	return out
}

// Filter keeps the notes whose title or any tag contains query, ignoring
// case. A blank query returns notes unchanged. Order is preserved.
func Filter(notes []api.Note, query string) []api.Note {
	if strings.TrimSpace(query) == "" {
		return notes
	}
	q := strings.ToLower(query)
	out := make([]api.Note, 0, len(notes))
	for _, n := range notes {
		if matches(n, q) {
			out = append(out, n)
		}
	}
	return out
}

func matches(n api.Note, q string) bool {
	if strings.Contains(strings.ToLower(n.Title), q) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func cloneNotes(in []api.Note) []api.Note {
	out := make([]api.Note, len(in))
	for i, n := range in {
		out[i] = cloneNote(n)
	}
	return out
}

func cloneNote(n api.Note) api.Note {
	n.Tags = append([]string{}, n.Tags...)
	return n
}
