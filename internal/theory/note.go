package theory

import "fmt"

// PitchClass is a note's identity modulo octave, 0 (C) through 11 (B).
type PitchClass int

// Valid reports whether pc is inside the 0-11 range.
func (pc PitchClass) Valid() bool {
	return pc >= 0 && pc <= 11
}

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
var flatNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// flatKeys are the key names whose signatures sit on the flat side of the
// circle of fifths. Roots in these keys are spelled with flats.
var flatKeys = map[string]bool{
	"F": true, "Bb": true, "Eb": true, "Ab": true, "Db": true, "Gb": true, "Cb": true,
}

// Note is a concrete pitch: a MIDI number plus the spelling chosen for
// display. Spelling never participates in equivalence checks.
type Note struct {
	Name       string `json:"name"`
	MIDINumber int    `json:"midiNumber"`
	IsSharp    bool   `json:"isSharp"`
}

// NewNote builds a note at the given MIDI number, spelled with sharps or
// flats according to preferFlat. MIDI numbers outside 0-127 are rejected.
func NewNote(midi int, preferFlat bool) (Note, error) {
	if midi < 0 || midi > 127 {
		return Note{}, fmt.Errorf("theory: midi number %d out of range 0-127", midi)
	}
	pc := pitchClassOfMIDI(midi)
	name := sharpNames[pc]
	if preferFlat {
		name = flatNames[pc]
	}
	return Note{
		Name:       name,
		MIDINumber: midi,
		IsSharp:    !preferFlat && len(sharpNames[pc]) == 2,
	}, nil
}

func pitchClassOfMIDI(midi int) PitchClass {
	return PitchClass(((midi-60)%12 + 12) % 12)
}

// PitchClass returns the note's pitch class relative to middle C.
func (n Note) PitchClass() PitchClass {
	return pitchClassOfMIDI(n.MIDINumber)
}

// Transpose shifts the note by the given number of semitones, keeping the
// same sharp/flat spelling preference.
func (n Note) Transpose(semitones int) (Note, error) {
	preferFlat := isAccidental(n.Name) && !n.IsSharp
	return NewNote(n.MIDINumber+semitones, preferFlat)
}

func isAccidental(name string) bool {
	return len(name) == 2
}

// SpellPitchClass names a pitch class in the context of the given key.
// Flat keys prefer flat spellings; everything else prefers sharps. The
// choice is deterministic so the same prompt always renders the same way.
func SpellPitchClass(pc PitchClass, key string) string {
	if !pc.Valid() {
		return ""
	}
	if flatKeys[key] {
		return flatNames[pc]
	}
	return sharpNames[pc]
}

// NoteInKey builds a note whose spelling follows the sharp/flat preference
// of the given key context.
func NoteInKey(midi int, key string) (Note, error) {
	return NewNote(midi, flatKeys[key])
}

// PitchClassSet is an unordered collection of pitch classes. Chord
// equivalence is defined as equality of these sets.
type PitchClassSet map[PitchClass]struct{}

// NewPitchClassSet collects the pitch classes of the given notes.
func NewPitchClassSet(notes ...Note) PitchClassSet {
	s := make(PitchClassSet, len(notes))
	for _, n := range notes {
		s[n.PitchClass()] = struct{}{}
	}
	return s
}

// SetOf builds a set directly from pitch classes.
func SetOf(pcs ...PitchClass) PitchClassSet {
	s := make(PitchClassSet, len(pcs))
	for _, pc := range pcs {
		s[pc] = struct{}{}
	}
	return s
}

// Equal reports pitch-class set equality: same classes, octave and
// spelling ignored.
func (s PitchClassSet) Equal(other PitchClassSet) bool {
	if len(s) != len(other) {
		return false
	}
	for pc := range s {
		if _, ok := other[pc]; !ok {
			return false
		}
	}
	return true
}

// Contains reports membership of a single pitch class.
func (s PitchClassSet) Contains(pc PitchClass) bool {
	_, ok := s[pc]
	return ok
}

// TonesEqual reports whether two groups of notes are tonally equivalent,
// i.e. their pitch-class sets match.
func TonesEqual(a, b []Note) bool {
	return NewPitchClassSet(a...).Equal(NewPitchClassSet(b...))
}

// KeyPitchClass resolves a key name ("C", "Bb", "F#") to its pitch class.
// Unknown names return false.
func KeyPitchClass(key string) (PitchClass, bool) {
	for i := 0; i < 12; i++ {
		if sharpNames[i] == key || flatNames[i] == key {
			return PitchClass(i), true
		}
	}
	if key == "Cb" {
		return 11, true
	}
	return 0, false
}
