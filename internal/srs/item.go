// Package srs maintains the SM-2-family spaced-repetition schedule
// over per-item correctness signals coming out of completed sessions.
package srs

import (
	"math"
	"time"
)

// Algorithm constants. The seed intervals and ease floor follow the
// classic SM-2 values.
const (
	InitialEaseFactor  = 2.5
	MinEaseFactor      = 1.3
	MaxEaseFactor      = 3.0
	EaseReward         = 0.05
	EasePenalty        = 0.2
	FirstSeedInterval  = 1.0 // days
	SecondSeedInterval = 6.0
	// LeechThreshold is the lapse count at which an item's ease resets
	// to the initial value; the item itself is never deleted.
	LeechThreshold = 8
	// MatureIntervalDays separates young items from mature ones.
	MatureIntervalDays = 21.0
)

// Mode mirrors the practice category an item was drilled in.
type Mode string

const (
	ModeChord    Mode = "chord"
	ModeInterval Mode = "interval"
	ModeCadence  Mode = "cadence"
)

// ItemID identifies one reviewable fact: a topic (chord symbol,
// interval name, cadence symbol) practiced in a key within a mode.
type ItemID struct {
	Mode  Mode   `json:"mode"`
	Topic string `json:"topic"`
	Key   string `json:"key"`
}

// Maturity buckets an item by how well-learned it is.
type Maturity int

const (
	MaturityNew Maturity = iota
	MaturityLearning
	MaturityYoung
	MaturityMature
)

func (m Maturity) String() string {
	switch m {
	case MaturityNew:
		return "new"
	case MaturityLearning:
		return "learning"
	case MaturityYoung:
		return "young"
	default:
		return "mature"
	}
}

// Item is one scheduled review fact. Items are upserted, never
// deleted.
type Item struct {
	ID           ItemID     `json:"id"`
	EaseFactor   float64    `json:"easeFactor"`
	IntervalDays float64    `json:"intervalDays"`
	Due          time.Time  `json:"dueDate"`
	Repetitions  int        `json:"repetitions"`
	Lapses       int        `json:"lapses"`
	Successes    int        `json:"successes"`
	LastResult   bool       `json:"lastResult"`
	LastReviewed time.Time  `json:"lastReviewed,omitempty"`
	LastLapse    *time.Time `json:"lastLapse,omitempty"`
}

// NewItem creates a fresh item, immediately due, with the default
// ease.
func NewItem(id ItemID, now time.Time) Item {
	return Item{
		ID:         id,
		EaseFactor: InitialEaseFactor,
		Due:        now,
	}
}

// Maturity classifies the item from repetitions and current interval.
func (it Item) Maturity() Maturity {
	switch {
	case it.Repetitions == 0 && it.Lapses == 0:
		return MaturityNew
	// Repetitions reset to zero on a lapse, so the item is relearning
	// regardless of its nominal interval.
	case it.Repetitions == 0:
		return MaturityLearning
	case it.IntervalDays < FirstSeedInterval:
		return MaturityLearning
	case it.IntervalDays < MatureIntervalDays:
		return MaturityYoung
	default:
		return MaturityMature
	}
}

// Accuracy is the item's lifetime success rate.
func (it Item) Accuracy() float64 {
	reviews := it.Successes + it.Lapses
	if reviews == 0 {
		return 0
	}
	return float64(it.Successes) / float64(reviews)
}

// DueAt reports whether the item is due at the given time.
func (it Item) DueAt(asOf time.Time) bool {
	return !it.Due.After(asOf)
}

// Review folds one correctness signal into the item and returns the
// updated copy. Pure: the input is never mutated.
//
// Correct reviews climb the SM-2 ladder: fixed 1-day then 6-day seed
// intervals, multiplicative growth afterwards, with the ease nudged up.
// An incorrect review resets repetitions, drops the ease (floored) and
// makes the item due again immediately.
func Review(it Item, correct bool, now time.Time) Item {
	next := it
	next.LastResult = correct
	next.LastReviewed = now

	if correct {
		next.Repetitions++
		next.Successes++
		next.EaseFactor = math.Min(it.EaseFactor+EaseReward, MaxEaseFactor)
		switch next.Repetitions {
		case 1:
			next.IntervalDays = FirstSeedInterval
		case 2:
			next.IntervalDays = SecondSeedInterval
		default:
			next.IntervalDays = it.IntervalDays * next.EaseFactor
		}
		next.Due = now.Add(days(next.IntervalDays))
		return next
	}

	next.Lapses++
	next.Repetitions = 0
	next.EaseFactor = math.Max(it.EaseFactor-EasePenalty, MinEaseFactor)
	next.IntervalDays = FirstSeedInterval
	next.Due = now // due again immediately
	lapsed := now
	next.LastLapse = &lapsed

	// A leech gets a clean slate on the ease so the multiplier can
	// recover once the item finally sticks.
	if next.Lapses%LeechThreshold == 0 {
		next.EaseFactor = InitialEaseFactor
	}
	return next
}

func days(d float64) time.Duration {
	return time.Duration(d * 24 * float64(time.Hour))
}
