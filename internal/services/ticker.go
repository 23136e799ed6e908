package services

import (
	"time"

	"github.com/ryanmoffett1/harmonydrill/internal/repository"

	"go.uber.org/zap"
)

// ReviewTicker periodically sweeps for profiles with reviews due and
// logs a reminder for each one that has not practiced yet today. It is
// the hook point for push delivery once a notification channel exists.
type ReviewTicker struct {
	log      *zap.Logger
	interval time.Duration
	stop     chan struct{}
}

func NewReviewTicker(log *zap.Logger, interval time.Duration) *ReviewTicker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReviewTicker{
		log:      log,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start runs the sweep loop in a goroutine.
func (t *ReviewTicker) Start() {
	t.log.Info("Starting review reminder ticker", zap.Duration("interval", t.interval))
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.runReviewCheck(time.Now().UTC())
			case <-t.stop:
				return
			}
		}
	}()
}

// Stop shuts the loop down. Safe to call once.
func (t *ReviewTicker) Stop() {
	close(t.stop)
}

func (t *ReviewTicker) runReviewCheck(now time.Time) {
	ids, err := repository.ProfileIDsWithReviewsDue(now)
	if err != nil {
		t.log.Error("Failed to query profiles with due reviews", zap.Error(err))
		return
	}

	for _, id := range ids {
		practiced, err := repository.HasPracticedToday(id, now)
		if err != nil {
			t.log.Error("Failed to check practice status", zap.Uint("profileID", id), zap.Error(err))
			continue
		}
		if practiced {
			continue
		}
		t.log.Info("Reviews due", zap.Uint("profileID", id))
	}
}
