package quiz

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ryanmoffett1/harmonydrill/internal/theory"
)

// rootRegisterBase places generated roots in the octave above middle C.
const rootRegisterBase = 60

// Generate builds exactly cfg.QuestionCount questions from the catalog.
// Pass a seeded rng for reproducible output; nil falls back to a
// time-seeded source.
func Generate(cat *theory.Catalog, cfg Config, rng *rand.Rand) ([]Question, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	pools, err := buildPools(cat, cfg)
	if err != nil {
		return nil, err
	}

	questions := make([]Question, 0, cfg.QuestionCount)
	var lastKey, lastTopic string
	for i := 0; i < cfg.QuestionCount; i++ {
		q, err := pools.sample(rng)
		if err != nil {
			return nil, err
		}
		// Reject a back-to-back repeat of the same root+type pair once;
		// a second collision is accepted rather than looping.
		if q.Key == lastKey && q.Topic() == lastTopic {
			if retry, err := pools.sample(rng); err == nil {
				q = retry
			}
		}
		lastKey, lastTopic = q.Key, q.Topic()
		questions = append(questions, q)
	}
	return questions, nil
}

// pools holds the constraint intersection the generator samples from.
type pools struct {
	cat      *theory.Catalog
	cfg      Config
	kinds    []Kind
	keys     []string
	chords   []theory.ChordType
	cadences []theory.CadenceType
	ivals    []theory.IntervalType
}

func buildPools(cat *theory.Catalog, cfg Config) (*pools, error) {
	p := &pools{cat: cat, cfg: cfg}

	p.kinds = cfg.effectiveKinds()
	if len(p.kinds) == 0 {
		return nil, fmt.Errorf("%w: no question types left after category selection", ErrInvalidConfiguration)
	}
	p.keys = cfg.KeyTier.Keys()

	p.chords = filterChords(cat.ChordTypesAt(cfg.Difficulty), cfg.ChordFilter)
	p.cadences = filterCadences(cat.CadenceTypesAt(cfg.Difficulty), cfg.CadenceFilter)
	p.ivals = cat.IntervalType

	// Every selected kind must have at least one valid key/type
	// combination, otherwise the session must not start.
	for _, k := range p.kinds {
		switch k.Mode() {
		case ModeChord:
			if len(p.chords) == 0 {
				return nil, fmt.Errorf("%w: chord filter excludes every eligible chord type", ErrInvalidConfiguration)
			}
		case ModeCadence:
			if len(p.cadences) == 0 {
				return nil, fmt.Errorf("%w: cadence filter excludes every eligible cadence type", ErrInvalidConfiguration)
			}
		case ModeInterval:
			if len(p.ivals) == 0 {
				return nil, fmt.Errorf("%w: catalog has no interval types", ErrInvalidConfiguration)
			}
		}
	}
	return p, nil
}

func filterChords(types []theory.ChordType, filter []string) []theory.ChordType {
	if len(filter) == 0 {
		return types
	}
	want := make(map[string]bool, len(filter))
	for _, s := range filter {
		want[s] = true
	}
	var out []theory.ChordType
	for _, ct := range types {
		if want[ct.Symbol] {
			out = append(out, ct)
		}
	}
	return out
}

func filterCadences(types []theory.CadenceType, filter []string) []theory.CadenceType {
	if len(filter) == 0 {
		return types
	}
	want := make(map[string]bool, len(filter))
	for _, s := range filter {
		want[s] = true
	}
	var out []theory.CadenceType
	for _, ct := range types {
		if want[ct.Symbol] {
			out = append(out, ct)
		}
	}
	return out
}

func (p *pools) sample(rng *rand.Rand) (Question, error) {
	kind := p.kinds[rng.Intn(len(p.kinds))]
	key := p.keys[rng.Intn(len(p.keys))]

	switch kind.Mode() {
	case ModeInterval:
		return p.sampleInterval(rng, kind, key)
	case ModeCadence:
		return p.sampleCadence(rng, kind, key)
	default:
		return p.sampleChord(rng, kind, key)
	}
}

func (p *pools) sampleChord(rng *rand.Rand, kind Kind, key string) (Question, error) {
	ct := p.chords[rng.Intn(len(p.chords))]
	chord, err := chordInKey(key, ct)
	if err != nil {
		return Question{}, err
	}

	q := Question{
		ID:    uuid.NewString(),
		Kind:  kind,
		Mode:  ModeChord,
		Key:   key,
		Chord: &chord,
	}

	switch kind {
	case KindSingleTone:
		slot := ct.Tones[rng.Intn(len(ct.Tones))]
		q.Target = &slot
		q.Expected = Expected{
			Target: theory.PitchClass((int(chord.Root.PitchClass()) + slot.Semitones) % 12),
		}
	case KindAuralQuality, KindChordIdentification:
		q.Choices = p.distractors(rng, ct)
		q.Expected = Expected{Label: ct.Symbol}
	default: // allTones, chordSpelling, auralSpelling
		q.Expected = Expected{Sets: []theory.PitchClassSet{chord.PitchClassSet()}}
	}
	return q, nil
}

func (p *pools) sampleInterval(rng *rand.Rand, kind Kind, key string) (Question, error) {
	it := p.ivals[rng.Intn(len(p.ivals))]
	root, err := rootNote(key)
	if err != nil {
		return Question{}, err
	}

	dir := theory.Ascending
	// Descending intervals only show up past the beginner tier.
	if p.cfg.Difficulty > theory.Beginner && rng.Intn(2) == 1 {
		dir = theory.Descending
	}
	iv := theory.Interval{Root: root, Type: it, Direction: dir}

	q := Question{
		ID:       uuid.NewString(),
		Kind:     kind,
		Mode:     ModeInterval,
		Key:      key,
		Interval: &iv,
	}

	switch kind {
	case KindIntervalIdentify:
		q.Expected = Expected{Label: it.ShortName}
	default: // intervalBuild
		pc, err := iv.TargetPitchClass()
		if err != nil {
			return Question{}, err
		}
		q.Expected = Expected{Target: pc}
	}
	return q, nil
}

func (p *pools) sampleCadence(rng *rand.Rand, kind Kind, key string) (Question, error) {
	cad := p.cadences[rng.Intn(len(p.cadences))]
	keyPC, ok := theory.KeyPitchClass(key)
	if !ok {
		return Question{}, fmt.Errorf("%w: unknown key %q", ErrInvalidConfiguration, key)
	}

	prompt := CadencePrompt{Cadence: cad}
	sets := make([]theory.PitchClassSet, 0, len(cad.Slots))
	for _, slot := range cad.Slots {
		ct, ok := p.cat.ChordType(slot.ChordSymbol)
		if !ok {
			return Question{}, fmt.Errorf("%w: cadence %q references unknown chord %q",
				ErrInvalidConfiguration, cad.Symbol, slot.ChordSymbol)
		}
		rootPC := theory.PitchClass((int(keyPC) + slot.Offset) % 12)
		root, err := theory.NoteInKey(rootRegisterBase+int(rootPC), key)
		if err != nil {
			return Question{}, err
		}
		chord := theory.Chord{Root: root, Type: ct}
		prompt.Chords = append(prompt.Chords, chord)
		sets = append(sets, chord.PitchClassSet())
	}

	return Question{
		ID:       uuid.NewString(),
		Kind:     kind,
		Mode:     ModeCadence,
		Key:      key,
		Cadence:  &prompt,
		Expected: Expected{Sets: sets},
	}, nil
}

// distractors picks 3-5 wrong chord-type choices for an identification
// question, preferring types one edit away from the correct one so the
// choices stay musically confusable. The correct symbol is mixed in.
func (p *pools) distractors(rng *rand.Rand, correct theory.ChordType) []string {
	var near, far []string
	for _, ct := range p.cat.ChordTypes {
		if ct.Symbol == correct.Symbol {
			continue
		}
		if toneEditDistance(correct, ct) <= 1 {
			near = append(near, ct.Symbol)
		} else {
			far = append(far, ct.Symbol)
		}
	}
	rng.Shuffle(len(near), func(i, j int) { near[i], near[j] = near[j], near[i] })
	rng.Shuffle(len(far), func(i, j int) { far[i], far[j] = far[j], far[i] })

	want := 3 + rng.Intn(3)
	choices := near
	if len(choices) > want {
		choices = choices[:want]
	}
	for len(choices) < want && len(far) > 0 {
		choices = append(choices, far[0])
		far = far[1:]
	}

	choices = append(choices, correct.Symbol)
	rng.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
	return choices
}

// toneEditDistance counts the single-tone edits between two chord
// types: 0 for identical pitch-class content, 1 for one added, removed
// or altered tone.
func toneEditDistance(a, b theory.ChordType) int {
	as, bs := a.PitchClasses(), b.PitchClasses()
	sym := 0
	for pc := range as {
		if !bs.Contains(pc) {
			sym++
		}
	}
	for pc := range bs {
		if !as.Contains(pc) {
			sym++
		}
	}
	switch {
	case sym == 0:
		return 0
	case sym == 1: // one tone added or removed
		return 1
	case sym == 2 && len(as) == len(bs): // one tone altered
		return 1
	default:
		return 2
	}
}

func rootNote(key string) (theory.Note, error) {
	pc, ok := theory.KeyPitchClass(key)
	if !ok {
		return theory.Note{}, fmt.Errorf("%w: unknown key %q", ErrInvalidConfiguration, key)
	}
	return theory.NoteInKey(rootRegisterBase+int(pc), key)
}

func chordInKey(key string, ct theory.ChordType) (theory.Chord, error) {
	root, err := rootNote(key)
	if err != nil {
		return theory.Chord{}, err
	}
	return theory.Chord{Root: root, Type: ct}, nil
}
