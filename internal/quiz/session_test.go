package quiz

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanmoffett1/harmonydrill/internal/theory"
)

type recordingSink struct {
	correct   int
	incorrect int
	played    int
}

func (r *recordingSink) AnsweredCorrectly(Question)   { r.correct++ }
func (r *recordingSink) AnsweredIncorrectly(Question) { r.incorrect++ }
func (r *recordingSink) ChordToPlay([]theory.Note)    { r.played++ }
func (r *recordingSink) RankUp(string, string)        {}

func startedSession(t *testing.T, cfg Config, opts ...Option) (*Session, *Question) {
	t.Helper()
	s := NewSession(theory.DefaultCatalog(), cfg, opts...)
	q, err := s.Start(rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	return s, q
}

func answerFor(q *Question) Answer {
	switch q.Kind {
	case KindSingleTone, KindIntervalBuild:
		return Answer{Notes: []int{60 + int(q.Expected.Target)}}
	case KindAuralQuality, KindChordIdentification, KindIntervalIdentify:
		return Answer{Label: q.Expected.Label}
	case KindCadenceSpelling:
		slots := make([][]int, len(q.Expected.Sets))
		for i, set := range q.Expected.Sets {
			for pc := range set {
				slots[i] = append(slots[i], 60+int(pc))
			}
		}
		return Answer{Slots: slots}
	default:
		var notes []int
		for pc := range q.Expected.Sets[0] {
			notes = append(notes, 60+int(pc))
		}
		return Answer{Notes: notes}
	}
}

func TestSessionLifecycle(t *testing.T) {
	sink := &recordingSink{}
	cfg := Config{
		QuestionCount: 3,
		Difficulty:    theory.Beginner,
		KeyTier:       theory.KeyTierEasy,
		QuestionTypes: []Kind{KindAllTones},
	}
	s, q := startedSession(t, cfg, WithEventSink(sink))
	assert.Equal(t, StateActive, s.State())

	var step *Step
	for i := 0; i < 3; i++ {
		var err error
		step, err = s.SubmitAnswer(answerFor(q))
		require.NoError(t, err)
		if i < 2 {
			require.NotNil(t, step.Next)
			q = step.Next
		}
	}

	require.True(t, step.Completed)
	require.NotNil(t, step.Result)
	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, 3, step.Result.TotalQuestions)
	assert.Equal(t, 3, step.Result.CorrectAnswers)
	assert.InDelta(t, 1.0, step.Result.Accuracy, 1e-9)
	assert.Equal(t, 100, step.Result.Score)
	assert.Len(t, step.Result.ItemResults, 3)
	assert.Equal(t, 3, sink.correct)
	assert.Zero(t, sink.incorrect)
}

func TestSessionIllegalTransitions(t *testing.T) {
	cfg := Config{
		QuestionCount: 1,
		Difficulty:    theory.Beginner,
		KeyTier:       theory.KeyTierEasy,
		QuestionTypes: []Kind{KindAllTones},
	}
	s := NewSession(theory.DefaultCatalog(), cfg)

	// Submitting while configuring is a desync.
	_, err := s.SubmitAnswer(Answer{})
	assert.ErrorIs(t, err, ErrIllegalStateTransition)
	_, err = s.Result()
	assert.ErrorIs(t, err, ErrIllegalStateTransition)

	q, err := s.Start(rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	// Double start is illegal.
	_, err = s.Start(rand.New(rand.NewSource(2)))
	assert.ErrorIs(t, err, ErrIllegalStateTransition)

	step, err := s.SubmitAnswer(answerFor(q))
	require.NoError(t, err)
	require.True(t, step.Completed)
	first := step.Result

	// Completion is terminal and idempotent: another submit fails and
	// the materialized result is unchanged.
	_, err = s.SubmitAnswer(Answer{})
	assert.ErrorIs(t, err, ErrIllegalStateTransition)
	again, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestSessionAbandon(t *testing.T) {
	cfg := Config{
		QuestionCount:     2,
		Difficulty:        theory.Beginner,
		KeyTier:           theory.KeyTierEasy,
		QuestionTypes:     []Kind{KindAllTones},
		Timed:             true,
		PerQuestionBudget: 50 * time.Millisecond,
	}
	s, _ := startedSession(t, cfg)
	require.NoError(t, s.Abandon())
	assert.Equal(t, StateAbandoned, s.State())

	// No result ever materializes for an abandoned run.
	_, err := s.Result()
	assert.ErrorIs(t, err, ErrIllegalStateTransition)

	// The question timer must not fire into the discarded session.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, StateAbandoned, s.State())

	assert.ErrorIs(t, s.Abandon(), ErrIllegalStateTransition)
}

func TestSessionSpeedRoundTimeout(t *testing.T) {
	sink := &recordingSink{}
	cfg := Config{
		QuestionCount:     2,
		Difficulty:        theory.Beginner,
		KeyTier:           theory.KeyTierEasy,
		QuestionTypes:     []Kind{KindAllTones},
		Timed:             true,
		PerQuestionBudget: 30 * time.Millisecond,
	}
	s, _ := startedSession(t, cfg, WithEventSink(sink))

	// Let both questions expire with nothing staged: the timeouts
	// auto-submit empty answers, which verify as incorrect.
	require.Eventually(t, func() bool {
		return s.State() == StateCompleted
	}, time.Second, 5*time.Millisecond)

	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, 2, res.TimeoutCount)
	assert.Zero(t, res.CorrectAnswers)
	assert.Equal(t, 2, sink.incorrect)
}

func TestSessionTimeoutSubmitsStagedSelection(t *testing.T) {
	cfg := Config{
		QuestionCount:     1,
		Difficulty:        theory.Beginner,
		KeyTier:           theory.KeyTierEasy,
		QuestionTypes:     []Kind{KindAllTones},
		Timed:             true,
		PerQuestionBudget: 40 * time.Millisecond,
	}
	s, q := startedSession(t, cfg)
	require.NoError(t, s.UpdateSelection(answerFor(q)))

	require.Eventually(t, func() bool {
		return s.State() == StateCompleted
	}, time.Second, 5*time.Millisecond)

	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, res.TimeoutCount, "timeouts are reported, never dropped")
	assert.Equal(t, 1, res.CorrectAnswers, "the staged partial selection was submitted")
}

func TestSessionAuralPlaybackEvents(t *testing.T) {
	sink := &recordingSink{}
	cfg := Config{
		QuestionCount: 4,
		Difficulty:    theory.Beginner,
		KeyTier:       theory.KeyTierEasy,
		QuestionTypes: []Kind{KindAuralSpelling},
	}
	s, q := startedSession(t, cfg, WithEventSink(sink))
	assert.Equal(t, 1, sink.played, "first aural question plays on start")

	for {
		step, err := s.SubmitAnswer(answerFor(q))
		require.NoError(t, err)
		if step.Completed {
			break
		}
		q = step.Next
	}
	assert.Equal(t, 4, sink.played)
}

func TestSessionWeightedAccuracy(t *testing.T) {
	cfg := Config{
		QuestionCount: 2,
		Difficulty:    theory.Beginner,
		KeyTier:       theory.KeyTierEasy,
		QuestionTypes: []Kind{KindAllTones},
	}
	s, q := startedSession(t, cfg)

	a := answerFor(q)
	a.HintsUsed = 1
	step, err := s.SubmitAnswer(a)
	require.NoError(t, err)
	step, err = s.SubmitAnswer(answerFor(step.Next))
	require.NoError(t, err)
	require.True(t, step.Completed)

	assert.InDelta(t, 1.0, step.Result.Accuracy, 1e-9)
	assert.InDelta(t, (0.66+1.0)/2, step.Result.WeightedAccuracy, 1e-9)
}
