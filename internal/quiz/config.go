package quiz

import (
	"fmt"
	"time"

	"github.com/ryanmoffett1/harmonydrill/internal/theory"
)

// Mode is the practice category a question belongs to.
type Mode string

const (
	ModeChord    Mode = "chord"
	ModeInterval Mode = "interval"
	ModeCadence  Mode = "cadence"
)

// Kind tags the question/answer shape. The verifier switches on it.
type Kind string

const (
	KindSingleTone          Kind = "singleTone"
	KindAllTones            Kind = "allTones"
	KindChordSpelling       Kind = "chordSpelling"
	KindAuralSpelling       Kind = "auralSpelling"
	KindAuralQuality        Kind = "auralQuality"
	KindChordIdentification Kind = "chordIdentification"
	KindIntervalBuild       Kind = "intervalBuild"
	KindIntervalIdentify    Kind = "intervalIdentify"
	KindCadenceSpelling     Kind = "cadenceSpelling"
)

// Mode returns the practice category the kind drills.
func (k Kind) Mode() Mode {
	switch k {
	case KindIntervalBuild, KindIntervalIdentify:
		return ModeInterval
	case KindCadenceSpelling:
		return ModeCadence
	default:
		return ModeChord
	}
}

// Valid reports whether k is a known question kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSingleTone, KindAllTones, KindChordSpelling, KindAuralSpelling,
		KindAuralQuality, KindChordIdentification, KindIntervalBuild,
		KindIntervalIdentify, KindCadenceSpelling:
		return true
	}
	return false
}

// Config describes one session request. It is immutable once a session
// starts.
type Config struct {
	QuestionCount     int               `json:"questionCount"`
	Difficulty        theory.Difficulty `json:"difficulty"`
	KeyTier           theory.KeyTier    `json:"keyTier"`
	QuestionTypes     []Kind            `json:"questionTypes"`
	ChordFilter       []string          `json:"chordFilter,omitempty"`
	CadenceFilter     []string          `json:"cadenceFilter,omitempty"`
	MixedCategories   bool              `json:"mixedCategories"`
	Categories        []Mode            `json:"categories,omitempty"`
	Timed             bool              `json:"timed"`
	PerQuestionBudget time.Duration     `json:"perQuestionBudget,omitempty"`
}

// Validate checks the structural invariants before any generation work.
func (c Config) Validate() error {
	if c.QuestionCount <= 0 {
		return fmt.Errorf("%w: question count must be positive", ErrInvalidConfiguration)
	}
	if len(c.QuestionTypes) == 0 {
		return fmt.Errorf("%w: question type set is empty", ErrInvalidConfiguration)
	}
	for _, k := range c.QuestionTypes {
		if !k.Valid() {
			return fmt.Errorf("%w: unknown question type %q", ErrInvalidConfiguration, k)
		}
	}
	if c.MixedCategories && len(c.Categories) == 0 {
		return fmt.Errorf("%w: mixed categories enabled with empty category set", ErrInvalidConfiguration)
	}
	if c.Timed && c.PerQuestionBudget <= 0 {
		return fmt.Errorf("%w: timed mode needs a per-question budget", ErrInvalidConfiguration)
	}
	return nil
}

// effectiveKinds narrows the question-type pool to the selected
// categories when mixed-category practice is on.
func (c Config) effectiveKinds() []Kind {
	if !c.MixedCategories {
		return c.QuestionTypes
	}
	allowed := make(map[Mode]bool, len(c.Categories))
	for _, m := range c.Categories {
		allowed[m] = true
	}
	var out []Kind
	for _, k := range c.QuestionTypes {
		if allowed[k.Mode()] {
			out = append(out, k)
		}
	}
	return out
}
