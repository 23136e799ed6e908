package handlers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ryanmoffett1/harmonydrill/internal/config"
	"github.com/ryanmoffett1/harmonydrill/internal/quiz"
	"github.com/ryanmoffett1/harmonydrill/internal/rating"
	"github.com/ryanmoffett1/harmonydrill/internal/repository"
	"github.com/ryanmoffett1/harmonydrill/internal/srs"
	"github.com/ryanmoffett1/harmonydrill/internal/theory"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler drives practice sessions over the JSON API. Live
// sessions are held in the registry; only completed ones reach the
// database.
type SessionHandler struct {
	log      *zap.Logger
	catalog  *theory.Catalog
	registry *Registry
	sink     quiz.EventSink

	mu       sync.Mutex
	outcomes map[string]rating.Outcome
}

func NewSessionHandler(log *zap.Logger, catalog *theory.Catalog, registry *Registry, sink quiz.EventSink) *SessionHandler {
	h := &SessionHandler{
		log:      log,
		catalog:  catalog,
		registry: registry,
		sink:     sink,
		outcomes: make(map[string]rating.Outcome),
	}
	// Completed sessions whose result was never fetched are persisted
	// by the registry sweep before eviction.
	registry.SetEvictFunc(func(profileID uint, s *quiz.Session) error {
		err := h.finalizeSession(profileID, s)
		if err != nil {
			log.Error("Failed to persist session during sweep",
				zap.String("sessionId", s.ID()), zap.Error(err))
		}
		return err
	})
	return h
}

// Start creates a session from the posted config and returns the first
// question.
func (h *SessionHandler) Start(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var cfg quiz.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session config"})
		return
	}
	if cfg.Timed && cfg.PerQuestionBudget == 0 {
		cfg.PerQuestionBudget = speedRoundBudget()
	}

	s := quiz.NewSession(h.catalog, cfg,
		quiz.WithEventSink(h.sink),
		quiz.WithVerifier(quiz.Verifier{Policy: substitutionPolicy()}))
	question, err := s.Start(nil)
	if err != nil {
		h.log.Warn("Failed to start session", zap.Error(err))
		respondQuizError(c, err)
		return
	}
	h.registry.Add(s, profileID)

	c.JSON(http.StatusCreated, gin.H{
		"sessionId":      s.ID(),
		"state":          s.State().String(),
		"question":       question,
		"totalQuestions": cfg.QuestionCount,
	})
}

// UpdateSelection stages a partial answer so a speed-round timeout
// submits what was selected so far.
func (h *SessionHandler) UpdateSelection(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var a quiz.Answer
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid selection"})
		return
	}
	if err := s.UpdateSelection(a); err != nil {
		respondQuizError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitAnswer judges the current question's answer and advances the
// session. Completing the final question triggers the rating update
// and persistence.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	profileID, _ := currentProfileID(c)
	s, ok := h.session(c)
	if !ok {
		return
	}

	var a quiz.Answer
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer"})
		return
	}

	step, err := s.SubmitAnswer(a)
	if err != nil {
		respondQuizError(c, err)
		return
	}

	resp := gin.H{
		"judgement": step.Judgement,
		"completed": step.Completed,
	}
	if step.Next != nil {
		resp["next"] = step.Next
	}
	if step.Completed {
		outcome, err := h.finalize(profileID, s)
		if err != nil {
			h.log.Error("Failed to persist completed session",
				zap.String("sessionId", s.ID()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}
		resp["result"] = step.Result
		resp["rating"] = outcome
	}
	c.JSON(http.StatusOK, resp)
}

// Abandon discards an active session without touching any persistent
// state.
func (h *SessionHandler) Abandon(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Abandon(); err != nil {
		respondQuizError(c, err)
		return
	}
	h.registry.Remove(s.ID())
	c.Status(http.StatusNoContent)
}

// Result returns a completed session's summary. A session finished by
// a speed-round timeout is finalized here if the answer path never saw
// the completion.
func (h *SessionHandler) Result(c *gin.Context) {
	profileID, _ := currentProfileID(c)
	s, ok := h.session(c)
	if !ok {
		return
	}

	result, err := s.Result()
	if err != nil {
		respondQuizError(c, err)
		return
	}
	outcome, err := h.finalize(profileID, s)
	if err != nil {
		h.log.Error("Failed to persist completed session",
			zap.String("sessionId", s.ID()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "rating": outcome})
}

// finalize applies the rating, persists the session and feeds the
// per-item results into the review schedule. It runs until it first
// succeeds; a failed save stays retryable on the next request, and
// later calls return the stored outcome.
func (h *SessionHandler) finalize(profileID uint, s *quiz.Session) (rating.Outcome, error) {
	err := h.registry.FinalizeOnce(s.ID(), func() error {
		return h.finalizeSession(profileID, s)
	})
	if err != nil {
		return rating.Outcome{}, err
	}

	h.mu.Lock()
	outcome, ok := h.outcomes[s.ID()]
	h.mu.Unlock()
	if !ok {
		return rating.Outcome{}, errors.New("session outcome missing")
	}
	return outcome, nil
}

func (h *SessionHandler) finalizeSession(profileID uint, s *quiz.Session) error {
	result, err := s.Result()
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	current, err := repository.LoadRating(profileID)
	if err != nil {
		return err
	}
	next, outcome := rating.ApplyResult(current, result, now, practiceParams())

	if err := repository.SaveCompletedSessionTx(profileID, s.Config(), result, next, outcome.Delta, now); err != nil {
		return err
	}

	h.mu.Lock()
	h.outcomes[s.ID()] = outcome
	h.mu.Unlock()

	if outcome.RankedUp {
		h.sink.RankUp(outcome.RankBefore.String(), outcome.RankAfter.String())
	}

	// Review items are per-item upserts; a failure here loses one
	// item's scheduling nudge, not the session.
	reviews := srs.NewService(repository.NewReviewStore(profileID))
	for _, ir := range result.ItemResults {
		id := srs.ItemID{Mode: srs.Mode(ir.Mode), Topic: ir.Topic, Key: ir.Key}
		if _, err := reviews.RecordResult(id, ir.Correct, now); err != nil {
			h.log.Error("Failed to record review result",
				zap.String("topic", ir.Topic), zap.String("key", ir.Key), zap.Error(err))
		}
	}
	return nil
}

// session resolves the :id parameter to a registered session owned by
// the calling profile.
func (h *SessionHandler) session(c *gin.Context) (*quiz.Session, bool) {
	profileID, ok := currentProfileID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	s, ok := h.registry.Get(c.Param("id"), profileID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return s, true
}

func respondQuizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, quiz.ErrInvalidConfiguration):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, quiz.ErrIllegalStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, quiz.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// practiceParams maps the practice config onto rating params. Zero
// values fall back to the engine defaults.
func practiceParams() rating.Params {
	if config.Conf == nil {
		return rating.Params{}
	}
	p := config.Conf.Practice
	return rating.Params{
		BaseDelta:           p.BaseDelta,
		MaxDeltaPerSession:  p.MaxDeltaPerSession,
		AccuracyWeight:      p.AccuracyWeight,
		SpeedWeight:         p.SpeedWeight,
		BaselinePerQuestion: time.Duration(p.BaselineSecondsPerQuestion) * time.Second,
	}
}

// substitutionPolicy merges deployment-configured label equivalences
// over the built-in ones.
func substitutionPolicy() quiz.SubstitutionPolicy {
	policy := quiz.DefaultSubstitutionPolicy()
	if config.Conf == nil {
		return policy
	}
	for symbol, alts := range config.Conf.Practice.Substitutions {
		policy[symbol] = append(policy[symbol], alts...)
	}
	return policy
}

func speedRoundBudget() time.Duration {
	if config.Conf == nil || config.Conf.Practice.SpeedRoundSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(config.Conf.Practice.SpeedRoundSeconds) * time.Second
}
