package services

import (
	"time"

	"github.com/ryanmoffett1/harmonydrill/internal/quiz"
	"github.com/ryanmoffett1/harmonydrill/internal/rating"
	"github.com/ryanmoffett1/harmonydrill/internal/srs"
	"github.com/ryanmoffett1/harmonydrill/internal/theory"
)

// weakKeyLimit caps how many struggling items drive a recommendation.
const weakKeyLimit = 5

// Recommendation is a pre-filled session request: the review schedule's
// only path back into question generation. The client may start the
// suggested session verbatim or treat it as a starting point.
type Recommendation struct {
	Reason    string           `json:"reason"`
	DueCounts map[srs.Mode]int `json:"dueCounts"`
	WeakKeys  []srs.WeakKey    `json:"weakKeys,omitempty"`
	Config    quiz.Config      `json:"config"`
}

// Recommend builds a session suggestion from what is due and what the
// player keeps missing. With no review history it falls back to a
// general session at the player's rank-appropriate difficulty.
func Recommend(svc *srs.Service, r rating.PlayerRating, now time.Time) (Recommendation, error) {
	stats, err := svc.Statistics(now)
	if err != nil {
		return Recommendation{}, err
	}
	weakest, err := svc.WeakestKeys(weakKeyLimit)
	if err != nil {
		return Recommendation{}, err
	}

	rec := Recommendation{
		DueCounts: stats.DueCounts,
		WeakKeys:  weakest,
		Config: quiz.Config{
			QuestionCount: 10,
			Difficulty:    difficultyFor(r.Rank()),
			KeyTier:       tierFor(r.Rank()),
		},
	}

	mode := busiestMode(stats.DueCounts)
	switch {
	case mode == srs.ModeInterval:
		rec.Reason = "interval reviews due"
		rec.Config.QuestionTypes = []quiz.Kind{quiz.KindIntervalBuild, quiz.KindIntervalIdentify}
	case mode == srs.ModeCadence:
		rec.Reason = "cadence reviews due"
		rec.Config.QuestionTypes = []quiz.Kind{quiz.KindCadenceSpelling}
	case mode == srs.ModeChord:
		rec.Reason = "chord reviews due"
		rec.Config.QuestionTypes = []quiz.Kind{quiz.KindAllTones, quiz.KindChordSpelling}
	default:
		rec.Reason = "general practice"
		rec.Config.MixedCategories = true
		rec.Config.Categories = []quiz.Mode{quiz.ModeChord, quiz.ModeInterval}
		rec.Config.QuestionTypes = []quiz.Kind{
			quiz.KindAllTones, quiz.KindChordIdentification, quiz.KindIntervalBuild,
		}
	}

	// Narrow a chord session down to the symbols the player struggles
	// with, when there are any.
	if mode == srs.ModeChord {
		for _, wk := range weakest {
			if wk.ID.Mode == srs.ModeChord {
				rec.Config.ChordFilter = append(rec.Config.ChordFilter, wk.ID.Topic)
			}
		}
		if len(rec.Config.ChordFilter) > 0 {
			rec.Reason = "weak chords due for review"
		}
	}

	return rec, nil
}

// busiestMode picks the mode with the most due items, or "" when
// nothing is due.
func busiestMode(due map[srs.Mode]int) srs.Mode {
	var best srs.Mode
	max := 0
	for _, m := range []srs.Mode{srs.ModeChord, srs.ModeInterval, srs.ModeCadence} {
		if due[m] > max {
			best, max = m, due[m]
		}
	}
	return best
}

func difficultyFor(r rating.Rank) theory.Difficulty {
	switch {
	case r >= rating.Soloist:
		return theory.Advanced
	case r >= rating.Journeyman:
		return theory.Intermediate
	default:
		return theory.Beginner
	}
}

func tierFor(r rating.Rank) theory.KeyTier {
	switch {
	case r >= rating.Soloist:
		return theory.KeyTierFull
	case r >= rating.Journeyman:
		return theory.KeyTierModerate
	default:
		return theory.KeyTierEasy
	}
}
