package quiz

import "github.com/ryanmoffett1/harmonydrill/internal/theory"

// CadencePrompt carries a cadence pattern resolved into concrete chords
// for one key.
type CadencePrompt struct {
	Cadence theory.CadenceType `json:"cadence"`
	Chords  []theory.Chord     `json:"chords"`
}

// Expected is a question's frozen answer key, computed once at
// generation time and never recomputed from mutable state.
type Expected struct {
	// Sets holds one pitch-class set per answer slot: a single set for
	// chord-spelling kinds, one per chord for cadences.
	Sets []theory.PitchClassSet `json:"-"`
	// Label is the expected identifier for identification kinds.
	Label string `json:"-"`
	// Target is the expected pitch class for single-note kinds.
	Target theory.PitchClass `json:"-"`
}

// Question is one immutable practice item.
type Question struct {
	ID       string                `json:"id"`
	Kind     Kind                  `json:"type"`
	Mode     Mode                  `json:"mode"`
	Key      string                `json:"key"`
	Chord    *theory.Chord         `json:"chord,omitempty"`
	Interval *theory.Interval      `json:"interval,omitempty"`
	Cadence  *CadencePrompt        `json:"cadence,omitempty"`
	Target   *theory.ChordToneSpec `json:"targetTone,omitempty"`
	Choices  []string              `json:"choices,omitempty"`
	Expected Expected              `json:"-"`
}

// Topic is the review-item topic the question drills: the chord symbol,
// interval short name, or cadence symbol.
func (q Question) Topic() string {
	switch q.Mode {
	case ModeInterval:
		if q.Interval != nil {
			return q.Interval.Type.ShortName
		}
	case ModeCadence:
		if q.Cadence != nil {
			return q.Cadence.Cadence.Symbol
		}
	default:
		if q.Chord != nil {
			return q.Chord.Type.Symbol
		}
	}
	return ""
}

// Aural reports whether the prompt is presented by ear, in which case
// the session emits a chordToPlay event when the question becomes
// current.
func (q Question) Aural() bool {
	return q.Kind == KindAuralSpelling || q.Kind == KindAuralQuality
}

// Answer is a submitted answer. Exactly one of the payload fields is
// expected to be populated; the verifier treats any mismatch as simply
// incorrect.
type Answer struct {
	Notes     []int   `json:"notes,omitempty"`
	Slots     [][]int `json:"slots,omitempty"`
	Label     string  `json:"label,omitempty"`
	HintsUsed int     `json:"hintsUsed,omitempty"`
}

// Judgement is the verifier's verdict on one answer.
type Judgement struct {
	Correct bool `json:"correct"`
	// Credit is the hint-degraded weight of a correct answer, 0 when
	// incorrect.
	Credit float64 `json:"credit"`
	// SlotResults records per-chord correctness for cadence answers so
	// the UI can highlight the failing slot.
	SlotResults []bool `json:"slotResults,omitempty"`
}
