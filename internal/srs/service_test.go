package srs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordResultCreatesItem(t *testing.T) {
	svc := NewService(NewMemoryStore())
	now := time.Now()

	it, err := svc.RecordResult(testID, true, now)
	require.NoError(t, err)
	assert.Equal(t, 1, it.Repetitions)
	assert.Equal(t, FirstSeedInterval, it.IntervalDays)

	total, err := svc.TotalDueCount(now.Add(25 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestDueCounts(t *testing.T) {
	svc := NewService(NewMemoryStore())
	now := time.Now()

	ids := []ItemID{
		{Mode: ModeChord, Topic: "maj7", Key: "C"},
		{Mode: ModeChord, Topic: "m7", Key: "F"},
		{Mode: ModeInterval, Topic: "M3", Key: "G"},
	}
	for _, id := range ids {
		_, err := svc.RecordResult(id, true, now)
		require.NoError(t, err)
	}
	// A lapsed item is due immediately.
	_, err := svc.RecordResult(ItemID{Mode: ModeCadence, Topic: "maj251", Key: "Bb"}, false, now)
	require.NoError(t, err)

	count, err := svc.DueCount(ModeCadence, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = svc.DueCount(ModeChord, now)
	require.NoError(t, err)
	assert.Zero(t, count, "correct items are scheduled a day out")

	total, err := svc.TotalDueCount(now.Add(48 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	due, err := svc.DueItems(now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "maj251", due[0].ID.Topic)
}

func TestStatistics(t *testing.T) {
	svc := NewService(NewMemoryStore())
	now := time.Now()

	_, err := svc.RecordResult(ItemID{Mode: ModeChord, Topic: "maj7", Key: "C"}, true, now)
	require.NoError(t, err)
	_, err = svc.RecordResult(ItemID{Mode: ModeChord, Topic: "m7", Key: "F"}, false, now)
	require.NoError(t, err)

	stats, err := svc.Statistics(now)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, 1, stats.ByMaturity[MaturityYoung.String()])
	assert.InDelta(t, 0.5, stats.AverageAccuracy, 1e-9)
	assert.Equal(t, 1, stats.DueCounts[ModeChord])
}

func TestWeakestKeysRanking(t *testing.T) {
	svc := NewService(NewMemoryStore())
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	weak := ItemID{Mode: ModeChord, Topic: "m7b5", Key: "Ab"}
	mid := ItemID{Mode: ModeChord, Topic: "7", Key: "G"}
	strong := ItemID{Mode: ModeInterval, Topic: "P5", Key: "C"}

	// weak: 1 success, 2 lapses (accuracy 1/3), most recent lapse last.
	svc.RecordResult(weak, true, base)
	svc.RecordResult(weak, false, base.Add(time.Hour))
	svc.RecordResult(weak, false, base.Add(3*time.Hour))

	// mid: 1 success, 1 lapse (accuracy 1/2).
	svc.RecordResult(mid, false, base)
	svc.RecordResult(mid, true, base.Add(time.Hour))

	// strong: 3 successes.
	for i := 0; i < 3; i++ {
		svc.RecordResult(strong, true, base.Add(time.Duration(i)*time.Hour))
	}

	keys, err := svc.WeakestKeys(2)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, weak, keys[0].ID)
	assert.Equal(t, mid, keys[1].ID)
	assert.Less(t, keys[0].Accuracy, keys[1].Accuracy)

	all, err := svc.WeakestKeys(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestWeakestKeysTieBreakByRecentLapse(t *testing.T) {
	svc := NewService(NewMemoryStore())
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	older := ItemID{Mode: ModeChord, Topic: "dim7", Key: "B"}
	newer := ItemID{Mode: ModeChord, Topic: "7b9", Key: "E"}

	svc.RecordResult(older, false, base)
	svc.RecordResult(newer, false, base.Add(2*time.Hour))

	keys, err := svc.WeakestKeys(2)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, newer, keys[0].ID, "equal accuracy ranks the fresher lapse first")
}

func TestConcurrentSameIDSerialized(t *testing.T) {
	svc := NewService(NewMemoryStore())
	now := time.Now()
	id := ItemID{Mode: ModeChord, Topic: "maj7", Key: "C"}

	const writers = 32
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.RecordResult(id, true, now)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	it, ok, err := svc.store.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, writers, it.Repetitions, "no update may be lost")
	assert.Equal(t, writers, it.Successes)
}
