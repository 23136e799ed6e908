package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testID = ItemID{Mode: ModeCadence, Topic: "maj251", Key: "C"}

func TestReviewCorrectLadder(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	it := NewItem(testID, now)
	assert.Equal(t, InitialEaseFactor, it.EaseFactor)
	assert.Equal(t, MaturityNew, it.Maturity())

	it = Review(it, true, now)
	assert.Equal(t, 1, it.Repetitions)
	assert.Equal(t, FirstSeedInterval, it.IntervalDays)

	it = Review(it, true, now)
	assert.Equal(t, 2, it.Repetitions)
	assert.Equal(t, SecondSeedInterval, it.IntervalDays)

	prev := it.IntervalDays
	it = Review(it, true, now)
	assert.Equal(t, 3, it.Repetitions)
	assert.InDelta(t, prev*it.EaseFactor, it.IntervalDays, 1e-9, "multiplicative growth after the seeds")
	assert.True(t, it.Due.After(now.Add(6*24*time.Hour)))
}

func TestReviewMonotonicIntervals(t *testing.T) {
	// Consecutive correct results never decrease the interval.
	now := time.Now()
	it := NewItem(testID, now)
	prev := 0.0
	for i := 0; i < 15; i++ {
		it = Review(it, true, now)
		assert.GreaterOrEqual(t, it.IntervalDays, prev, "repetition %d", i+1)
		prev = it.IntervalDays
	}
	assert.Equal(t, MaturityMature, it.Maturity())
}

func TestReviewLapseResets(t *testing.T) {
	now := time.Now()
	it := NewItem(testID, now)
	for i := 0; i < 5; i++ {
		it = Review(it, true, now)
	}
	ease := it.EaseFactor

	it = Review(it, false, now)
	assert.Equal(t, 0, it.Repetitions)
	assert.Equal(t, 1, it.Lapses)
	assert.Equal(t, FirstSeedInterval, it.IntervalDays)
	assert.InDelta(t, ease-EasePenalty, it.EaseFactor, 1e-9)
	assert.True(t, it.DueAt(now), "a lapsed item is due again immediately")
	require.NotNil(t, it.LastLapse)
}

func TestTripleLapseScenario(t *testing.T) {
	// Three incorrect results in a row on a fresh item: repetitions
	// stay 0, lapses reach 3 and the interval sits at the seed every
	// time, never compounding below it.
	now := time.Now()
	it := NewItem(testID, now)
	for i := 1; i <= 3; i++ {
		it = Review(it, false, now)
		assert.Equal(t, 0, it.Repetitions)
		assert.Equal(t, i, it.Lapses)
		assert.Equal(t, FirstSeedInterval, it.IntervalDays)
	}
	assert.InDelta(t, InitialEaseFactor-3*EasePenalty, it.EaseFactor, 1e-9)
}

func TestEaseFloorAndLeechReset(t *testing.T) {
	now := time.Now()
	it := NewItem(testID, now)

	for i := 1; i <= LeechThreshold-1; i++ {
		it = Review(it, false, now)
	}
	assert.Equal(t, MinEaseFactor, it.EaseFactor, "ease bottoms out at the floor")

	it = Review(it, false, now)
	assert.Equal(t, LeechThreshold, it.Lapses)
	assert.Equal(t, InitialEaseFactor, it.EaseFactor, "leech threshold resets the ease")
}

func TestMaturityBuckets(t *testing.T) {
	now := time.Now()
	it := NewItem(testID, now)
	assert.Equal(t, MaturityNew, it.Maturity())

	it = Review(it, true, now)
	assert.Equal(t, MaturityYoung, it.Maturity(), "1-day interval is past learning")

	lapsed := Review(it, false, now)
	assert.Equal(t, MaturityLearning, lapsed.Maturity(), "a lapse sends the item back to learning")

	relearned := Review(lapsed, true, now)
	assert.Equal(t, MaturityYoung, relearned.Maturity())

	it.IntervalDays = 30
	assert.Equal(t, MaturityMature, it.Maturity())
}

func TestReviewPure(t *testing.T) {
	now := time.Now()
	it := NewItem(testID, now)
	before := it
	Review(it, true, now)
	Review(it, false, now)
	assert.Equal(t, before, it)
}
