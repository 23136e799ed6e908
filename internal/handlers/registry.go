package handlers

import (
	"sync"
	"time"

	"github.com/ryanmoffett1/harmonydrill/internal/quiz"
)

// registryTTL is how long a session stays retrievable after it stops
// accepting answers. Completed results remain fetchable until the
// sweep evicts them; persisted history covers everything older.
const registryTTL = time.Hour

// finalizeState guards a session's completion side effects. done flips
// only after a successful run, so a failed save can be retried by the
// next request instead of stranding the result.
type finalizeState struct {
	mu   sync.Mutex
	done bool
}

func (f *finalizeState) run(fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	f.done = true
	return nil
}

type registryEntry struct {
	session   *quiz.Session
	profileID uint
	createdAt time.Time
	finalize  *finalizeState
}

// Registry holds live sessions in memory, keyed by session UUID. Each
// session belongs to exactly one profile; lookups from another profile
// behave as not-found.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry

	// evict persists a completed session the sweep is about to drop.
	evict func(profileID uint, s *quiz.Session) error
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// SetEvictFunc installs the persistence hook the sweep runs for
// completed sessions whose result was never fetched.
func (r *Registry) SetEvictFunc(f func(profileID uint, s *quiz.Session) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evict = f
}

func (r *Registry) Add(s *quiz.Session, profileID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s.ID()] = registryEntry{
		session:   s,
		profileID: profileID,
		createdAt: time.Now(),
		finalize:  &finalizeState{},
	}
}

// FinalizeOnce runs f until it first succeeds, then never again for
// the session's lifetime. A session can complete either from a
// submitted answer or from a speed-round timeout on the last question,
// and both paths funnel the completion side effects through here; a
// failed run leaves the state retryable.
func (r *Registry) FinalizeOnce(id string, f func() error) error {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return quiz.ErrSessionNotFound
	}
	return e.finalize.run(f)
}

// Get returns the session when it exists and is owned by profileID.
func (r *Registry) Get(id string, profileID uint) (*quiz.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok || e.profileID != profileID {
		return nil, false
	}
	return e.session, true
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Sweep evicts entries older than the TTL. A completed session that
// was never persisted (its result was never fetched) is finalized
// through the evict hook before it is dropped; an active one is
// abandoned.
func (r *Registry) Sweep(now time.Time) {
	r.mu.Lock()
	var expired []registryEntry
	for id, e := range r.entries {
		if now.Sub(e.createdAt) > registryTTL {
			expired = append(expired, e)
			delete(r.entries, id)
		}
	}
	evict := r.evict
	r.mu.Unlock()

	for _, e := range expired {
		switch e.session.State() {
		case quiz.StateCompleted:
			if evict != nil {
				profileID, s := e.profileID, e.session
				e.finalize.run(func() error {
					return evict(profileID, s)
				})
			}
		case quiz.StateActive:
			e.session.Abandon()
		}
	}
}

// StartJanitor sweeps stale sessions in the background.
func (r *Registry) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			r.Sweep(time.Now())
		}
	}()
}
