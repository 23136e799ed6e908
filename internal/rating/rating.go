// Package rating turns finished session results into a persistent
// skill rating, rank and practice streak. Everything here is pure: the
// caller persists the returned value.
package rating

import (
	"math"
	"time"

	"github.com/ryanmoffett1/harmonydrill/internal/quiz"
)

// Rank is the coarse threshold-based label derived from the numeric
// rating.
type Rank int

const (
	Novice Rank = iota
	Apprentice
	Journeyman
	Performer
	Soloist
	Virtuoso
	Maestro
)

func (r Rank) String() string {
	switch r {
	case Novice:
		return "Novice"
	case Apprentice:
		return "Apprentice"
	case Journeyman:
		return "Journeyman"
	case Performer:
		return "Performer"
	case Soloist:
		return "Soloist"
	case Virtuoso:
		return "Virtuoso"
	case Maestro:
		return "Maestro"
	default:
		return "Unknown"
	}
}

// rankThresholds are the monotonically increasing rating floors per
// rank.
var rankThresholds = []struct {
	min  int
	rank Rank
}{
	{0, Novice},
	{200, Apprentice},
	{500, Journeyman},
	{900, Performer},
	{1400, Soloist},
	{2000, Virtuoso},
	{2700, Maestro},
}

// RankFor maps a cumulative rating to its rank.
func RankFor(rating int) Rank {
	r := Novice
	for _, t := range rankThresholds {
		if rating >= t.min {
			r = t.rank
		}
	}
	return r
}

// PlayerRating is the cross-session skill state. Created on the first
// session, mutated once per completed session.
type PlayerRating struct {
	Rating           int       `json:"currentRating"`
	Streak           int       `json:"currentStreak"`
	LastPracticeDate time.Time `json:"lastPracticeDate"`
}

// Rank derives the current rank label.
func (p PlayerRating) Rank() Rank {
	return RankFor(p.Rating)
}

// Params tune the rating delta formula. Zero values fall back to
// DefaultParams.
type Params struct {
	BaseDelta           int
	MaxDeltaPerSession  int
	AccuracyWeight      float64
	SpeedWeight         float64
	BaselinePerQuestion time.Duration
}

// DefaultParams is the production tuning: a 30s/question speed
// baseline, accuracy weighted 0.7 against speed 0.3, and a ±50 clamp
// so one session can never swing the rating beyond design limits.
func DefaultParams() Params {
	return Params{
		BaseDelta:           40,
		MaxDeltaPerSession:  50,
		AccuracyWeight:      0.7,
		SpeedWeight:         0.3,
		BaselinePerQuestion: 30 * time.Second,
	}
}

func (p Params) orDefaults() Params {
	d := DefaultParams()
	if p.BaseDelta == 0 {
		p.BaseDelta = d.BaseDelta
	}
	if p.MaxDeltaPerSession == 0 {
		p.MaxDeltaPerSession = d.MaxDeltaPerSession
	}
	if p.AccuracyWeight == 0 && p.SpeedWeight == 0 {
		p.AccuracyWeight = d.AccuracyWeight
		p.SpeedWeight = d.SpeedWeight
	}
	if p.BaselinePerQuestion == 0 {
		p.BaselinePerQuestion = d.BaselinePerQuestion
	}
	return p
}

// Outcome reports what a session did to the rating so the UI can
// surface rank-ups and streak changes as distinct events rather than
// silently folding them into the number.
type Outcome struct {
	Delta          int  `json:"delta"`
	RankBefore     Rank `json:"rankBefore"`
	RankAfter      Rank `json:"rankAfter"`
	RankedUp       bool `json:"rankedUp"`
	StreakBefore   int  `json:"streakBefore"`
	StreakAfter    int  `json:"streakAfter"`
	StreakExtended bool `json:"streakExtended"`
}

// ApplyResult folds one completed session into the rating. It never
// mutates its input; the caller persists the returned value, which
// keeps the engine trivially testable and all-or-nothing.
func ApplyResult(r PlayerRating, result *quiz.Result, now time.Time, params Params) (PlayerRating, Outcome) {
	params = params.orDefaults()

	delta := clamp(ratingDelta(result, params), -params.MaxDeltaPerSession, params.MaxDeltaPerSession)

	next := r
	next.Rating = r.Rating + delta
	if next.Rating < 0 {
		next.Rating = 0
	}

	out := Outcome{
		Delta:        delta,
		RankBefore:   r.Rank(),
		StreakBefore: r.Streak,
	}

	next.Streak = nextStreak(r, now)
	next.LastPracticeDate = now

	out.RankAfter = next.Rank()
	out.RankedUp = out.RankAfter > out.RankBefore
	out.StreakAfter = next.Streak
	out.StreakExtended = next.Streak > r.Streak
	return next, out
}

// ratingDelta blends hint-weighted accuracy and speed relative to the
// baseline. Accuracy below 50% pulls the rating down.
func ratingDelta(result *quiz.Result, params Params) int {
	accScore := (result.WeightedAccuracy - 0.5) * 2 // [-1, 1]

	avg := result.TotalTime / time.Duration(max(result.TotalQuestions, 1))
	speedScore := (params.BaselinePerQuestion.Seconds() - avg.Seconds()) / params.BaselinePerQuestion.Seconds()
	speedScore = math.Max(-1, math.Min(1, speedScore))
	// Speed only ever helps a passing session; a fast wrong answer is
	// not a skill signal.
	if accScore <= 0 && speedScore > 0 {
		speedScore = 0
	}

	raw := float64(params.BaseDelta) * (params.AccuracyWeight*accScore + params.SpeedWeight*speedScore)
	return int(math.Round(raw))
}

// nextStreak applies the consecutive-calendar-day rule. Practicing a
// second time on the same day is idempotent.
func nextStreak(r PlayerRating, now time.Time) int {
	if r.LastPracticeDate.IsZero() {
		return 1
	}
	last := dateOf(r.LastPracticeDate)
	today := dateOf(now)
	switch {
	case last.Equal(today):
		return max(r.Streak, 1)
	case last.AddDate(0, 0, 1).Equal(today):
		return r.Streak + 1
	default:
		return 1
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
