package theory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeyTier buckets root keys by accidental count, easiest first.
type KeyTier int

const (
	KeyTierEasy KeyTier = iota
	KeyTierModerate
	KeyTierFull
)

// ParseKeyTier maps a config string to a KeyTier.
func ParseKeyTier(s string) (KeyTier, error) {
	switch s {
	case "easy":
		return KeyTierEasy, nil
	case "moderate":
		return KeyTierModerate, nil
	case "full":
		return KeyTierFull, nil
	}
	return 0, fmt.Errorf("theory: unknown key tier %q", s)
}

func (t KeyTier) String() string {
	switch t {
	case KeyTierEasy:
		return "easy"
	case KeyTierModerate:
		return "moderate"
	default:
		return "full"
	}
}

// Keys returns the root key names eligible at the tier. Tiers are
// cumulative: a harder tier always includes the easier keys.
func (t KeyTier) Keys() []string {
	easy := []string{"C", "F", "G", "Bb", "D"}
	moderate := append(easy, "Eb", "A", "Ab", "E")
	full := append(moderate, "Db", "B", "Gb")
	switch t {
	case KeyTierEasy:
		return easy
	case KeyTierModerate:
		return moderate
	default:
		return full
	}
}

// CadenceSlot is one chord position of a cadence: a degree offset from
// the cadence key plus the chord quality built on it.
type CadenceSlot struct {
	Degree      string `yaml:"degree" json:"degree"`
	Offset      int    `yaml:"offset" json:"offset"`
	ChordSymbol string `yaml:"chord" json:"chordSymbol"`
}

// CadenceType defines a multi-chord progression pattern, e.g. a ii-V-I.
type CadenceType struct {
	Symbol     string        `yaml:"symbol" json:"symbol"`
	Name       string        `yaml:"name" json:"name"`
	Difficulty Difficulty    `yaml:"-" json:"difficulty"`
	Slots      []CadenceSlot `yaml:"slots" json:"slots"`
}

// Catalog bundles every chord, interval and cadence type the engine can
// draw questions from.
type Catalog struct {
	ChordTypes   []ChordType
	IntervalType []IntervalType
	CadenceTypes []CadenceType
}

// DefaultCatalog returns the built-in jazz-harmony catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		ChordTypes:   defaultChordTypes(),
		IntervalType: defaultIntervalTypes(),
		CadenceTypes: defaultCadenceTypes(),
	}
}

func defaultChordTypes() []ChordType {
	mk := func(symbol, name string, diff Difficulty, tones ...ChordToneSpec) ChordType {
		return ChordType{Symbol: symbol, Name: name, Difficulty: diff, Tones: tones}
	}
	ts := func(name string, semis int) ChordToneSpec { return ChordToneSpec{Name: name, Semitones: semis} }
	return []ChordType{
		mk("maj", "major triad", Beginner, ts("R", 0), ts("3", 4), ts("5", 7)),
		mk("min", "minor triad", Beginner, ts("R", 0), ts("b3", 3), ts("5", 7)),
		mk("maj7", "major seventh", Beginner, ts("R", 0), ts("3", 4), ts("5", 7), ts("7", 11)),
		mk("m7", "minor seventh", Beginner, ts("R", 0), ts("b3", 3), ts("5", 7), ts("b7", 10)),
		mk("7", "dominant seventh", Beginner, ts("R", 0), ts("3", 4), ts("5", 7), ts("b7", 10)),
		mk("m7b5", "half-diminished seventh", Intermediate, ts("R", 0), ts("b3", 3), ts("b5", 6), ts("b7", 10)),
		mk("dim7", "diminished seventh", Intermediate, ts("R", 0), ts("b3", 3), ts("b5", 6), ts("bb7", 9)),
		mk("6", "major sixth", Intermediate, ts("R", 0), ts("3", 4), ts("5", 7), ts("6", 9)),
		mk("m6", "minor sixth", Intermediate, ts("R", 0), ts("b3", 3), ts("5", 7), ts("6", 9)),
		mk("sus4", "suspended fourth", Intermediate, ts("R", 0), ts("4", 5), ts("5", 7)),
		mk("9", "dominant ninth", Intermediate, ts("R", 0), ts("3", 4), ts("5", 7), ts("b7", 10), ts("9", 14)),
		mk("maj9", "major ninth", Intermediate, ts("R", 0), ts("3", 4), ts("5", 7), ts("7", 11), ts("9", 14)),
		mk("m9", "minor ninth", Intermediate, ts("R", 0), ts("b3", 3), ts("5", 7), ts("b7", 10), ts("9", 14)),
		mk("mMaj7", "minor-major seventh", Advanced, ts("R", 0), ts("b3", 3), ts("5", 7), ts("7", 11)),
		mk("7b9", "dominant flat nine", Advanced, ts("R", 0), ts("3", 4), ts("5", 7), ts("b7", 10), ts("b9", 13)),
		mk("7#9", "dominant sharp nine", Advanced, ts("R", 0), ts("3", 4), ts("5", 7), ts("b7", 10), ts("#9", 15)),
		mk("7#11", "dominant sharp eleven", Advanced, ts("R", 0), ts("3", 4), ts("5", 7), ts("b7", 10), ts("#11", 18)),
		mk("maj7#11", "lydian major seventh", Advanced, ts("R", 0), ts("3", 4), ts("5", 7), ts("7", 11), ts("#11", 18)),
		mk("13", "dominant thirteenth", Advanced, ts("R", 0), ts("3", 4), ts("5", 7), ts("b7", 10), ts("9", 14), ts("13", 21)),
		mk("7b13", "dominant flat thirteen", Advanced, ts("R", 0), ts("3", 4), ts("b7", 10), ts("b13", 20)),
		mk("7alt", "altered dominant", Advanced, ts("R", 0), ts("3", 4), ts("b7", 10), ts("b9", 13), ts("#9", 15), ts("b13", 20)),
	}
}

func defaultIntervalTypes() []IntervalType {
	return []IntervalType{
		{Name: "minor second", ShortName: "m2", Semitones: 1},
		{Name: "major second", ShortName: "M2", Semitones: 2},
		{Name: "minor third", ShortName: "m3", Semitones: 3},
		{Name: "major third", ShortName: "M3", Semitones: 4},
		{Name: "perfect fourth", ShortName: "P4", Semitones: 5},
		{Name: "tritone", ShortName: "TT", Semitones: 6},
		{Name: "perfect fifth", ShortName: "P5", Semitones: 7},
		{Name: "minor sixth", ShortName: "m6", Semitones: 8},
		{Name: "major sixth", ShortName: "M6", Semitones: 9},
		{Name: "minor seventh", ShortName: "m7", Semitones: 10},
		{Name: "major seventh", ShortName: "M7", Semitones: 11},
	}
}

func defaultCadenceTypes() []CadenceType {
	return []CadenceType{
		{
			Symbol: "maj251", Name: "major ii-V-I", Difficulty: Beginner,
			Slots: []CadenceSlot{
				{Degree: "ii", Offset: 2, ChordSymbol: "m7"},
				{Degree: "V", Offset: 7, ChordSymbol: "7"},
				{Degree: "I", Offset: 0, ChordSymbol: "maj7"},
			},
		},
		{
			Symbol: "min251", Name: "minor ii-V-i", Difficulty: Intermediate,
			Slots: []CadenceSlot{
				{Degree: "ii", Offset: 2, ChordSymbol: "m7b5"},
				{Degree: "V", Offset: 7, ChordSymbol: "7b9"},
				{Degree: "i", Offset: 0, ChordSymbol: "mMaj7"},
			},
		},
		{
			Symbol: "backdoor", Name: "backdoor ii-V", Difficulty: Advanced,
			Slots: []CadenceSlot{
				{Degree: "iv", Offset: 5, ChordSymbol: "m7"},
				{Degree: "bVII", Offset: 10, ChordSymbol: "7"},
				{Degree: "I", Offset: 0, ChordSymbol: "maj7"},
			},
		},
		{
			Symbol: "tritone", Name: "tritone substitution", Difficulty: Advanced,
			Slots: []CadenceSlot{
				{Degree: "ii", Offset: 2, ChordSymbol: "m7"},
				{Degree: "bII", Offset: 1, ChordSymbol: "7"},
				{Degree: "I", Offset: 0, ChordSymbol: "maj7"},
			},
		},
	}
}

// ChordType looks a chord type up by symbol.
func (c *Catalog) ChordType(symbol string) (ChordType, bool) {
	for _, ct := range c.ChordTypes {
		if ct.Symbol == symbol {
			return ct, true
		}
	}
	return ChordType{}, false
}

// CadenceType looks a cadence type up by symbol.
func (c *Catalog) CadenceType(symbol string) (CadenceType, bool) {
	for _, ct := range c.CadenceTypes {
		if ct.Symbol == symbol {
			return ct, true
		}
	}
	return CadenceType{}, false
}

// ChordTypesAt returns the chord types available at a difficulty. Tiers
// are cumulative so intermediate includes the beginner types.
func (c *Catalog) ChordTypesAt(d Difficulty) []ChordType {
	var out []ChordType
	for _, ct := range c.ChordTypes {
		if ct.Difficulty <= d {
			out = append(out, ct)
		}
	}
	return out
}

// CadenceTypesAt returns the cadence types available at a difficulty.
func (c *Catalog) CadenceTypesAt(d Difficulty) []CadenceType {
	var out []CadenceType
	for _, ct := range c.CadenceTypes {
		if ct.Difficulty <= d {
			out = append(out, ct)
		}
	}
	return out
}

// Validate checks every chord type invariant and that cadence slots
// reference known chord symbols.
func (c *Catalog) Validate() error {
	for _, ct := range c.ChordTypes {
		if err := ct.Validate(); err != nil {
			return err
		}
	}
	for _, cad := range c.CadenceTypes {
		if len(cad.Slots) == 0 {
			return fmt.Errorf("theory: cadence %q has no slots", cad.Symbol)
		}
		for _, slot := range cad.Slots {
			if _, ok := c.ChordType(slot.ChordSymbol); !ok {
				return fmt.Errorf("theory: cadence %q slot %q uses unknown chord %q",
					cad.Symbol, slot.Degree, slot.ChordSymbol)
			}
		}
	}
	return nil
}

// catalogFile mirrors the YAML override layout.
type catalogFile struct {
	ChordTypes []struct {
		ChordType  `yaml:",inline"`
		Difficulty string `yaml:"difficulty"`
	} `yaml:"chord_types"`
	CadenceTypes []struct {
		CadenceType `yaml:",inline"`
		Difficulty  string `yaml:"difficulty"`
	} `yaml:"cadence_types"`
}

// LoadCatalog reads a catalog override from a YAML file. Sections left
// empty in the file fall back to the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("theory: failed to read catalog file: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("theory: failed to unmarshal catalog YAML: %w", err)
	}

	cat := DefaultCatalog()
	if len(file.ChordTypes) > 0 {
		cat.ChordTypes = nil
		for _, entry := range file.ChordTypes {
			ct := entry.ChordType
			if ct.Difficulty, err = ParseDifficulty(entry.Difficulty); err != nil {
				return nil, err
			}
			cat.ChordTypes = append(cat.ChordTypes, ct)
		}
	}
	if len(file.CadenceTypes) > 0 {
		cat.CadenceTypes = nil
		for _, entry := range file.CadenceTypes {
			cad := entry.CadenceType
			if cad.Difficulty, err = ParseDifficulty(entry.Difficulty); err != nil {
				return nil, err
			}
			cat.CadenceTypes = append(cat.CadenceTypes, cad)
		}
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}
