package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanmoffett1/harmonydrill/internal/quiz"
	"github.com/ryanmoffett1/harmonydrill/internal/theory"
)

func newTestSession(t *testing.T) *quiz.Session {
	t.Helper()
	cfg := quiz.Config{
		QuestionCount: 1,
		Difficulty:    theory.Beginner,
		KeyTier:       theory.KeyTierEasy,
		QuestionTypes: []quiz.Kind{quiz.KindAllTones},
	}
	return quiz.NewSession(theory.DefaultCatalog(), cfg)
}

func completeSession(t *testing.T, s *quiz.Session) {
	t.Helper()
	q, err := s.Start(nil)
	require.NoError(t, err)
	var notes []int
	for pc := range q.Expected.Sets[0] {
		notes = append(notes, 60+int(pc))
	}
	step, err := s.SubmitAnswer(quiz.Answer{Notes: notes})
	require.NoError(t, err)
	require.True(t, step.Completed)
}

func TestFinalizeOnceRetriesAfterFailure(t *testing.T) {
	r := NewRegistry()
	s := newTestSession(t)
	r.Add(s, 1)

	attempts := 0
	fail := func() error {
		attempts++
		return errors.New("connection reset")
	}
	succeed := func() error {
		attempts++
		return nil
	}

	// A failed run must not consume the one-shot.
	require.Error(t, r.FinalizeOnce(s.ID(), fail))
	assert.Equal(t, 1, attempts)

	require.NoError(t, r.FinalizeOnce(s.ID(), succeed))
	assert.Equal(t, 2, attempts)

	// After the first success the callback never runs again.
	require.NoError(t, r.FinalizeOnce(s.ID(), fail))
	assert.Equal(t, 2, attempts)
}

func TestFinalizeOnceUnknownSession(t *testing.T) {
	r := NewRegistry()
	err := r.FinalizeOnce("nope", func() error { return nil })
	assert.ErrorIs(t, err, quiz.ErrSessionNotFound)
}

func backdate(r *Registry, id string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[id]
	e.createdAt = e.createdAt.Add(-d)
	r.entries[id] = e
}

func TestSweepFinalizesUnfetchedCompletedSession(t *testing.T) {
	r := NewRegistry()
	evicted := 0
	r.SetEvictFunc(func(profileID uint, s *quiz.Session) error {
		evicted++
		return nil
	})

	s := newTestSession(t)
	r.Add(s, 7)
	completeSession(t, s)
	backdate(r, s.ID(), registryTTL+time.Minute)

	r.Sweep(time.Now())

	assert.Equal(t, 1, evicted, "completed session persists before eviction")
	_, ok := r.Get(s.ID(), 7)
	assert.False(t, ok)
}

func TestSweepSkipsAlreadyFinalizedSession(t *testing.T) {
	r := NewRegistry()
	evicted := 0
	r.SetEvictFunc(func(profileID uint, s *quiz.Session) error {
		evicted++
		return nil
	})

	s := newTestSession(t)
	r.Add(s, 7)
	completeSession(t, s)
	require.NoError(t, r.FinalizeOnce(s.ID(), func() error { return nil }))
	backdate(r, s.ID(), registryTTL+time.Minute)

	r.Sweep(time.Now())
	assert.Zero(t, evicted)
}

func TestSweepAbandonsActiveSession(t *testing.T) {
	r := NewRegistry()
	r.SetEvictFunc(func(profileID uint, s *quiz.Session) error {
		t.Fatal("active session must not be persisted")
		return nil
	})

	s := newTestSession(t)
	_, err := s.Start(nil)
	require.NoError(t, err)
	r.Add(s, 7)
	backdate(r, s.ID(), registryTTL+time.Minute)

	r.Sweep(time.Now())

	assert.Equal(t, quiz.StateAbandoned, s.State())
	_, ok := r.Get(s.ID(), 7)
	assert.False(t, ok)

	// Fresh entries survive the sweep.
	s2 := newTestSession(t)
	r.Add(s2, 7)
	r.Sweep(time.Now())
	_, ok = r.Get(s2.ID(), 7)
	assert.True(t, ok)
}
