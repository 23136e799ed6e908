package quiz

import "github.com/ryanmoffett1/harmonydrill/internal/theory"

// EventSink receives semantic session events. Audio and haptic
// subsystems implement it outside the engine; the engine never touches
// playback APIs directly.
type EventSink interface {
	AnsweredCorrectly(q Question)
	AnsweredIncorrectly(q Question)
	// ChordToPlay fires when an aural question becomes current, with
	// the notes the playback layer should sound.
	ChordToPlay(notes []theory.Note)
	RankUp(before, after string)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) AnsweredCorrectly(Question)   {}
func (NopSink) AnsweredIncorrectly(Question) {}
func (NopSink) ChordToPlay([]theory.Note)    {}
func (NopSink) RankUp(string, string)        {}
