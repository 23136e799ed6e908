package quiz

import "github.com/ryanmoffett1/harmonydrill/internal/theory"

// SubstitutionPolicy lists the identification labels accepted as
// equivalent to a canonical symbol. Whether naming substitutes count as
// correct is a deployment decision, not an engine rule.
type SubstitutionPolicy map[string][]string

// DefaultSubstitutionPolicy accepts the common alternate spellings of
// quality names.
func DefaultSubstitutionPolicy() SubstitutionPolicy {
	return SubstitutionPolicy{
		"m7b5": {"ø7", "min7b5", "half-dim"},
		"dim7": {"o7", "°7"},
		"7":    {"dom7"},
		"min":  {"m", "-"},
		"maj7": {"M7", "Δ7"},
	}
}

// Accepts reports whether a submitted label satisfies the expected one.
func (p SubstitutionPolicy) Accepts(expected, submitted string) bool {
	if expected == submitted {
		return true
	}
	for _, alt := range p[expected] {
		if alt == submitted {
			return true
		}
	}
	return false
}

// hintCredit is the fixed credit schedule for correct answers: full
// credit unhinted, then 66% and 33%.
func hintCredit(hints int) float64 {
	switch {
	case hints <= 0:
		return 1.0
	case hints == 1:
		return 0.66
	default:
		return 0.33
	}
}

// Verifier judges submitted answers. The zero value uses exact label
// matching; a policy widens what identification answers accept.
type Verifier struct {
	Policy SubstitutionPolicy
}

// Verify judges an answer against the question's frozen answer key. It
// is total: a malformed answer (wrong payload shape, empty submission,
// out-of-range notes) is simply incorrect, never a panic or error.
func (v Verifier) Verify(q Question, a Answer) Judgement {
	correct := false
	var slots []bool

	switch q.Kind {
	case KindSingleTone, KindIntervalBuild:
		// Exactly one note, compared by pitch class only.
		correct = len(a.Notes) == 1 && midiPitchClass(a.Notes[0]) == q.Expected.Target

	case KindAllTones, KindChordSpelling, KindAuralSpelling:
		// Exact pitch-class set equality: no subset or superset credit.
		correct = len(q.Expected.Sets) == 1 &&
			pitchSetOfMIDI(a.Notes).Equal(q.Expected.Sets[0])

	case KindAuralQuality, KindChordIdentification, KindIntervalIdentify:
		correct = a.Label != "" && v.accepts(q.Expected.Label, a.Label)

	case KindCadenceSpelling:
		slots = make([]bool, len(q.Expected.Sets))
		correct = len(a.Slots) == len(q.Expected.Sets)
		for i, want := range q.Expected.Sets {
			if i < len(a.Slots) && pitchSetOfMIDI(a.Slots[i]).Equal(want) {
				slots[i] = true
			} else {
				correct = false
			}
		}
	}

	j := Judgement{Correct: correct, SlotResults: slots}
	if correct {
		j.Credit = hintCredit(a.HintsUsed)
	}
	return j
}

func (v Verifier) accepts(expected, submitted string) bool {
	if v.Policy == nil {
		return expected == submitted
	}
	return v.Policy.Accepts(expected, submitted)
}

func midiPitchClass(midi int) theory.PitchClass {
	return theory.PitchClass(((midi-60)%12 + 12) % 12)
}

func pitchSetOfMIDI(notes []int) theory.PitchClassSet {
	s := make(theory.PitchClassSet, len(notes))
	for _, n := range notes {
		s[midiPitchClass(n)] = struct{}{}
	}
	return s
}
