package theory

import (
	"fmt"
	"sort"
)

// Difficulty tiers a chord or cadence type by how early a student meets it.
type Difficulty int

const (
	Beginner Difficulty = iota
	Intermediate
	Advanced
)

// String returns the lowercase tier name used in configs and JSON.
func (d Difficulty) String() string {
	switch d {
	case Beginner:
		return "beginner"
	case Intermediate:
		return "intermediate"
	case Advanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// ParseDifficulty maps a config string to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "beginner":
		return Beginner, nil
	case "intermediate":
		return Intermediate, nil
	case "advanced":
		return Advanced, nil
	}
	return 0, fmt.Errorf("theory: unknown difficulty %q", s)
}

// ChordToneSpec names one scale-degree slot of a chord type ("b7", "9")
// and its distance from the root in semitones. Extensions above the
// octave use offsets up to 23.
type ChordToneSpec struct {
	Name      string `yaml:"name" json:"name"`
	Semitones int    `yaml:"semitones" json:"semitones"`
}

// ChordType is the interval pattern defining a chord quality.
type ChordType struct {
	Symbol     string          `yaml:"symbol" json:"symbol"`
	Name       string          `yaml:"name" json:"name"`
	Difficulty Difficulty      `yaml:"-" json:"difficulty"`
	Tones      []ChordToneSpec `yaml:"tones" json:"tones"`
}

// Validate enforces the structural invariants: a non-empty tone list,
// sorted ascending by semitone offset, with the root present at 0.
func (ct ChordType) Validate() error {
	if len(ct.Tones) == 0 {
		return fmt.Errorf("theory: chord type %q has no tones", ct.Symbol)
	}
	if !sort.SliceIsSorted(ct.Tones, func(i, j int) bool {
		return ct.Tones[i].Semitones < ct.Tones[j].Semitones
	}) {
		return fmt.Errorf("theory: chord type %q tones not sorted", ct.Symbol)
	}
	if ct.Tones[0].Semitones != 0 {
		return fmt.Errorf("theory: chord type %q missing root tone", ct.Symbol)
	}
	for _, t := range ct.Tones {
		if t.Semitones < 0 || t.Semitones > 23 {
			return fmt.Errorf("theory: chord type %q tone %q offset %d out of range 0-23",
				ct.Symbol, t.Name, t.Semitones)
		}
	}
	return nil
}

// PitchClasses returns the chord type's tone offsets reduced to pitch
// classes relative to the root.
func (ct ChordType) PitchClasses() PitchClassSet {
	s := make(PitchClassSet, len(ct.Tones))
	for _, t := range ct.Tones {
		s[PitchClass(t.Semitones%12)] = struct{}{}
	}
	return s
}

// Chord is a chord type rooted on a concrete note.
type Chord struct {
	Root Note      `json:"root"`
	Type ChordType `json:"chordType"`
}

// referenceOctaveBase keeps derived chord tones inside one register so
// voicing never leaks into equivalence checks.
const referenceOctaveBase = 60

// Tones derives the chord's notes: the root transposed by each tone
// spec, octave-normalized to the reference register around middle C.
func (c Chord) Tones() []Note {
	preferFlat := isAccidental(c.Root.Name) && !c.Root.IsSharp || flatKeys[c.Root.Name]
	out := make([]Note, 0, len(c.Type.Tones))
	for _, spec := range c.Type.Tones {
		pc := PitchClass((int(c.Root.PitchClass()) + spec.Semitones) % 12)
		n, err := NewNote(referenceOctaveBase+int(pc), preferFlat)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// PitchClassSet returns the chord's tonal identity.
func (c Chord) PitchClassSet() PitchClassSet {
	s := make(PitchClassSet, len(c.Type.Tones))
	for _, spec := range c.Type.Tones {
		s[PitchClass((int(c.Root.PitchClass())+spec.Semitones)%12)] = struct{}{}
	}
	return s
}

// TonallyEquivalent reports whether two chords share one pitch-class set.
func (c Chord) TonallyEquivalent(other Chord) bool {
	return c.PitchClassSet().Equal(other.PitchClassSet())
}
