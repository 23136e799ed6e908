package services

import (
	"github.com/ryanmoffett1/harmonydrill/internal/quiz"
	"github.com/ryanmoffett1/harmonydrill/internal/theory"

	"go.uber.org/zap"
)

// FeedbackSink logs the semantic feedback events a session emits while
// it runs. A client UI would translate these into sound and animation;
// the server records them for debugging session flow.
type FeedbackSink struct {
	log *zap.Logger
}

func NewFeedbackSink(log *zap.Logger) *FeedbackSink {
	return &FeedbackSink{log: log}
}

func (s *FeedbackSink) AnsweredCorrectly(q quiz.Question) {
	s.log.Debug("Answered correctly",
		zap.String("questionId", q.ID),
		zap.String("topic", q.Topic()),
		zap.String("key", q.Key))
}

func (s *FeedbackSink) AnsweredIncorrectly(q quiz.Question) {
	s.log.Debug("Answered incorrectly",
		zap.String("questionId", q.ID),
		zap.String("topic", q.Topic()),
		zap.String("key", q.Key))
}

func (s *FeedbackSink) ChordToPlay(notes []theory.Note) {
	midi := make([]int, len(notes))
	for i, n := range notes {
		midi[i] = n.MIDINumber
	}
	s.log.Debug("Chord to play", zap.Ints("midi", midi))
}

func (s *FeedbackSink) RankUp(from, to string) {
	s.log.Info("Rank up", zap.String("from", from), zap.String("to", to))
}
