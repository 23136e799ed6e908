package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNoteRange(t *testing.T) {
	_, err := NewNote(-1, false)
	assert.Error(t, err)
	_, err = NewNote(128, false)
	assert.Error(t, err)
	n, err := NewNote(60, false)
	require.NoError(t, err)
	assert.Equal(t, "C", n.Name)
	assert.Equal(t, PitchClass(0), n.PitchClass())
}

func TestPitchClassOfMIDI(t *testing.T) {
	tests := []struct {
		midi     int
		expected PitchClass
	}{
		{60, 0},  // middle C
		{61, 1},  // C#/Db
		{72, 0},  // C an octave up
		{59, 11}, // B below middle C
		{48, 0},  // C an octave down
		{0, 0},
		{127, 7},
	}
	for _, tt := range tests {
		n, err := NewNote(tt.midi, false)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, n.PitchClass(), "midi %d", tt.midi)
	}
}

func TestTransposeOctaveInvariance(t *testing.T) {
	// An octave transposition never changes tonal identity.
	for midi := 48; midi < 72; midi++ {
		n, err := NewNote(midi, false)
		require.NoError(t, err)
		up, err := n.Transpose(12)
		require.NoError(t, err)
		assert.True(t, TonesEqual([]Note{n}, []Note{up}), "midi %d", midi)
	}
}

func TestSpellPitchClass(t *testing.T) {
	tests := []struct {
		pc       PitchClass
		key      string
		expected string
	}{
		{10, "F", "Bb"}, // flat key context
		{10, "G", "A#"}, // sharp key context
		{3, "Eb", "Eb"},
		{3, "E", "D#"},
		{1, "Db", "Db"},
		{6, "C", "F#"},
		{0, "Bb", "C"}, // naturals spell the same everywhere
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SpellPitchClass(tt.pc, tt.key), "pc %d in %s", tt.pc, tt.key)
	}
}

func TestPitchClassSetEqual(t *testing.T) {
	a := SetOf(0, 4, 7, 11)
	b := SetOf(11, 7, 4, 0)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(SetOf(0, 4, 7)))
	assert.False(t, a.Equal(SetOf(0, 4, 7, 10)))
	assert.True(t, PitchClassSet{}.Equal(SetOf()))
}

func TestKeyPitchClass(t *testing.T) {
	pc, ok := KeyPitchClass("Bb")
	require.True(t, ok)
	assert.Equal(t, PitchClass(10), pc)

	pc, ok = KeyPitchClass("A#")
	require.True(t, ok)
	assert.Equal(t, PitchClass(10), pc)

	_, ok = KeyPitchClass("H")
	assert.False(t, ok)
}
