package srs

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store is the persistence collaborator for review items. Implement-
// ations must make Put atomic per item; the service serializes writers
// of the same id above it.
type Store interface {
	Get(id ItemID) (Item, bool, error)
	Put(item Item) error
	All() ([]Item, error)
}

// Service is the scheduler facade: it records results and answers due
// and analytics queries. Concurrent RecordResult calls for different
// ids are independent; calls for the same id are serialized through a
// per-id lock.
type Service struct {
	store Store

	mu    sync.Mutex
	locks map[ItemID]*sync.Mutex
}

// NewService wraps a store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		locks: make(map[ItemID]*sync.Mutex),
	}
}

func (s *Service) lockFor(id ItemID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// RecordResult folds one correctness signal into the item's schedule,
// creating the item on first sight. The read-modify-write-persist is
// atomic with respect to other writers of the same id, and nothing is
// persisted if the store write fails.
func (s *Service) RecordResult(id ItemID, correct bool, now time.Time) (Item, error) {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	item, ok, err := s.store.Get(id)
	if err != nil {
		return Item{}, fmt.Errorf("srs: load item: %w", err)
	}
	if !ok {
		item = NewItem(id, now)
	}

	updated := Review(item, correct, now)
	if err := s.store.Put(updated); err != nil {
		return Item{}, fmt.Errorf("srs: persist item: %w", err)
	}
	return updated, nil
}

// DueItems returns every item due at the given time, soonest first.
func (s *Service) DueItems(asOf time.Time) ([]Item, error) {
	items, err := s.store.All()
	if err != nil {
		return nil, fmt.Errorf("srs: load items: %w", err)
	}
	var due []Item
	for _, it := range items {
		if it.DueAt(asOf) {
			due = append(due, it)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Due.Before(due[j].Due) })
	return due, nil
}

// DueCount counts due items in one mode.
func (s *Service) DueCount(mode Mode, asOf time.Time) (int, error) {
	items, err := s.store.All()
	if err != nil {
		return 0, fmt.Errorf("srs: load items: %w", err)
	}
	count := 0
	for _, it := range items {
		if it.ID.Mode == mode && it.DueAt(asOf) {
			count++
		}
	}
	return count, nil
}

// TotalDueCount counts due items across all modes.
func (s *Service) TotalDueCount(asOf time.Time) (int, error) {
	due, err := s.DueItems(asOf)
	if err != nil {
		return 0, err
	}
	return len(due), nil
}

// Stats aggregates the schedule by maturity bucket.
type Stats struct {
	TotalItems      int            `json:"totalItems"`
	ByMaturity      map[string]int `json:"byMaturity"`
	AverageAccuracy float64        `json:"averageAccuracy"`
	DueCounts       map[Mode]int   `json:"dueCounts"`
}

// Statistics reports maturity-bucket counts and the average lifetime
// accuracy across items that have been reviewed at least once.
func (s *Service) Statistics(asOf time.Time) (Stats, error) {
	items, err := s.store.All()
	if err != nil {
		return Stats{}, fmt.Errorf("srs: load items: %w", err)
	}

	stats := Stats{
		TotalItems: len(items),
		ByMaturity: map[string]int{},
		DueCounts:  map[Mode]int{},
	}
	accSum := 0.0
	reviewed := 0
	for _, it := range items {
		stats.ByMaturity[it.Maturity().String()]++
		if it.DueAt(asOf) {
			stats.DueCounts[it.ID.Mode]++
		}
		if it.Successes+it.Lapses > 0 {
			accSum += it.Accuracy()
			reviewed++
		}
	}
	if reviewed > 0 {
		stats.AverageAccuracy = accSum / float64(reviewed)
	}
	return stats, nil
}

// WeakKey is one entry of the weak-area ranking.
type WeakKey struct {
	ID       ItemID  `json:"id"`
	Accuracy float64 `json:"accuracy"`
	Lapses   int     `json:"lapses"`
}

// WeakestKeys ranks reviewed items by ascending lifetime accuracy,
// breaking ties by the most recent lapse. This feeds the "practice
// weak keys" recommendation, the scheduler's only feedback path into
// question generation.
func (s *Service) WeakestKeys(limit int) ([]WeakKey, error) {
	items, err := s.store.All()
	if err != nil {
		return nil, fmt.Errorf("srs: load items: %w", err)
	}

	var candidates []Item
	for _, it := range items {
		if it.Successes+it.Lapses > 0 {
			candidates = append(candidates, it)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Accuracy() != b.Accuracy() {
			return a.Accuracy() < b.Accuracy()
		}
		return lapseTime(a).After(lapseTime(b))
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]WeakKey, 0, len(candidates))
	for _, it := range candidates {
		out = append(out, WeakKey{ID: it.ID, Accuracy: it.Accuracy(), Lapses: it.Lapses})
	}
	return out, nil
}

func lapseTime(it Item) time.Time {
	if it.LastLapse == nil {
		return time.Time{}
	}
	return *it.LastLapse
}

// MemoryStore is an in-memory Store, used by tests and as the default
// when no persistence is wired.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[ItemID]Item
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[ItemID]Item)}
}

func (m *MemoryStore) Get(id ItemID) (Item, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	return it, ok, nil
}

func (m *MemoryStore) Put(item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *MemoryStore) All() ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}
