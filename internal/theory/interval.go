package theory

import "fmt"

// IntervalType is a named interval size within the octave.
type IntervalType struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Semitones int    `json:"semitones"`
}

// Direction says which way an interval is built from its root.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// Interval is an interval type applied to a concrete root note.
type Interval struct {
	Root      Note         `json:"rootNote"`
	Type      IntervalType `json:"intervalType"`
	Direction Direction    `json:"direction"`
}

// Target resolves the note the interval lands on.
func (iv Interval) Target() (Note, error) {
	delta := iv.Type.Semitones
	if iv.Direction == Descending {
		delta = -delta
	}
	return iv.Root.Transpose(delta)
}

// TargetPitchClass is the octave-independent identity of the target note.
func (iv Interval) TargetPitchClass() (PitchClass, error) {
	t, err := iv.Target()
	if err != nil {
		return 0, fmt.Errorf("theory: interval target out of range: %w", err)
	}
	return t.PitchClass(), nil
}
