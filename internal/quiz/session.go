package quiz

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ryanmoffett1/harmonydrill/internal/theory"
)

// State is the session lifecycle phase.
type State int

const (
	StateConfiguring State = iota
	StateActive
	StateCompleted
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateConfiguring:
		return "configuring"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// ItemResult is one per-question correctness signal for the
// spaced-repetition scheduler, keyed by mode + topic + key.
type ItemResult struct {
	Mode    Mode   `json:"mode"`
	Topic   string `json:"topic"`
	Key     string `json:"key"`
	Correct bool   `json:"correct"`
}

// Result is the immutable summary of one completed session.
type Result struct {
	SessionID      string            `json:"sessionId"`
	Questions      []Question        `json:"questions"`
	Answers        map[string]Answer `json:"userAnswers"`
	IsCorrect      map[string]bool   `json:"isCorrect"`
	SlotResults    map[string][]bool `json:"slotResults,omitempty"`
	TotalTime      time.Duration     `json:"totalTime"`
	CorrectAnswers int               `json:"correctAnswers"`
	TotalQuestions int               `json:"totalQuestions"`
	TimeoutCount   int               `json:"timeoutCount"`
	Accuracy       float64           `json:"accuracy"`
	// WeightedAccuracy degrades correct-with-hints answers by the fixed
	// credit schedule; the rating engine consumes this one.
	WeightedAccuracy float64      `json:"weightedAccuracy"`
	Score            int          `json:"score"`
	ItemResults      []ItemResult `json:"itemResults"`
}

// Step is what SubmitAnswer reports back: the judgement for the
// answered question plus either the next question or the final result.
type Step struct {
	Judgement Judgement `json:"judgement"`
	Completed bool      `json:"completed"`
	Next      *Question `json:"next,omitempty"`
	Result    *Result   `json:"result,omitempty"`
}

// Session drives one practice run through configuring → active →
// completed. It is owned by a single logical caller; the mutex protects
// against the timer goroutine, not concurrent submitters.
type Session struct {
	mu sync.Mutex

	id       string
	cfg      Config
	cat      *theory.Catalog
	verifier Verifier
	sink     EventSink
	now      func() time.Time

	state         State
	questions     []Question
	answers       map[string]Answer
	judgements    map[string]Judgement
	idx           int
	startedAt     time.Time
	questionStart time.Time
	pending       Answer
	timer         *time.Timer
	timeoutCount  int
	result        *Result
}

// Option customizes a session at construction.
type Option func(*Session)

// WithEventSink routes semantic events to the given sink.
func WithEventSink(sink EventSink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithVerifier overrides the default verifier, e.g. to change the
// substitution policy.
func WithVerifier(v Verifier) Option {
	return func(s *Session) { s.verifier = v }
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session in the configuring state.
func NewSession(cat *theory.Catalog, cfg Config, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		cfg:        cfg,
		cat:        cat,
		verifier:   Verifier{Policy: DefaultSubstitutionPolicy()},
		sink:       NopSink{},
		now:        time.Now,
		state:      StateConfiguring,
		answers:    make(map[string]Answer),
		judgements: make(map[string]Judgement),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns the immutable session request.
func (s *Session) Config() Config { return s.cfg }

// Start validates the config, generates the question batch and
// transitions to active. The elapsed timer resets and the first
// question becomes current.
func (s *Session) Start(rng *rand.Rand) (*Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConfiguring {
		return nil, fmt.Errorf("%w: start from %s", ErrIllegalStateTransition, s.state)
	}
	questions, err := Generate(s.cat, s.cfg, rng)
	if err != nil {
		return nil, err
	}
	s.questions = questions
	s.state = StateActive
	s.idx = 0
	s.startedAt = s.now()
	s.beginQuestionLocked()
	q := s.questions[0]
	return &q, nil
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (*Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return nil, fmt.Errorf("%w: no current question in %s", ErrIllegalStateTransition, s.state)
	}
	q := s.questions[s.idx]
	return &q, nil
}

// UpdateSelection stages the caller's in-progress selection so a
// speed-round timeout submits the partial answer instead of nothing.
func (s *Session) UpdateSelection(a Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return fmt.Errorf("%w: selection update in %s", ErrIllegalStateTransition, s.state)
	}
	s.pending = a
	return nil
}

// SubmitAnswer records the answer and its verdict for the current
// question and advances. On the final question it completes the
// session and materializes the result.
func (s *Session) SubmitAnswer(a Answer) (*Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return nil, fmt.Errorf("%w: submit in %s", ErrIllegalStateTransition, s.state)
	}
	return s.submitLocked(a, false), nil
}

// Abandon discards an active session. Nothing is reported downstream;
// cross-session state must never observe an abandoned run. The pending
// timer is cancelled synchronously before the state changes.
func (s *Session) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return fmt.Errorf("%w: abandon from %s", ErrIllegalStateTransition, s.state)
	}
	s.stopTimerLocked()
	s.state = StateAbandoned
	s.result = nil
	return nil
}

// Result returns the finished session's summary.
func (s *Session) Result() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCompleted || s.result == nil {
		return nil, fmt.Errorf("%w: result requested in %s", ErrIllegalStateTransition, s.state)
	}
	return s.result, nil
}

func (s *Session) submitLocked(a Answer, timedOut bool) *Step {
	s.stopTimerLocked()

	q := s.questions[s.idx]
	j := s.verifier.Verify(q, a)
	s.answers[q.ID] = a
	s.judgements[q.ID] = j
	s.pending = Answer{}
	if timedOut {
		s.timeoutCount++
	}

	if j.Correct {
		s.sink.AnsweredCorrectly(q)
	} else {
		s.sink.AnsweredIncorrectly(q)
	}

	step := &Step{Judgement: j}
	s.idx++
	if s.idx >= len(s.questions) {
		s.completeLocked()
		step.Completed = true
		step.Result = s.result
		return step
	}

	s.beginQuestionLocked()
	next := s.questions[s.idx]
	step.Next = &next
	return step
}

// beginQuestionLocked marks the next question current: restarts the
// per-question timer for timed mode and emits playback events for
// aural prompts.
func (s *Session) beginQuestionLocked() {
	s.questionStart = s.now()
	q := s.questions[s.idx]
	if q.Aural() && q.Chord != nil {
		s.sink.ChordToPlay(q.Chord.Tones())
	}
	if s.cfg.Timed {
		index := s.idx
		s.timer = time.AfterFunc(s.cfg.PerQuestionBudget, func() {
			s.timeoutFire(index)
		})
	}
}

// timeoutFire auto-submits the staged partial selection when a
// question's time budget expires. A stale timer (question already
// advanced, session gone) is a no-op.
func (s *Session) timeoutFire(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || s.idx != index {
		return
	}
	s.submitLocked(s.pending, true)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) completeLocked() {
	s.state = StateCompleted

	total := len(s.questions)
	correct := 0
	creditSum := 0.0
	isCorrect := make(map[string]bool, total)
	slotResults := make(map[string][]bool)
	items := make([]ItemResult, 0, total)

	for _, q := range s.questions {
		j := s.judgements[q.ID]
		isCorrect[q.ID] = j.Correct
		if j.Correct {
			correct++
			creditSum += j.Credit
		}
		if len(j.SlotResults) > 0 {
			slotResults[q.ID] = j.SlotResults
		}
		items = append(items, ItemResult{
			Mode:    q.Mode,
			Topic:   q.Topic(),
			Key:     q.Key,
			Correct: j.Correct,
		})
	}

	accuracy := float64(correct) / float64(total)
	s.result = &Result{
		SessionID:        s.id,
		Questions:        s.questions,
		Answers:          s.answers,
		IsCorrect:        isCorrect,
		SlotResults:      slotResults,
		TotalTime:        s.now().Sub(s.startedAt),
		CorrectAnswers:   correct,
		TotalQuestions:   total,
		TimeoutCount:     s.timeoutCount,
		Accuracy:         accuracy,
		WeightedAccuracy: creditSum / float64(total),
		Score:            int(math.Round(accuracy * 100)),
		ItemResults:      items,
	}
}
