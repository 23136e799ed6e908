package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ryanmoffett1/harmonydrill/internal/config"
	"github.com/ryanmoffett1/harmonydrill/internal/repository"
	"github.com/ryanmoffett1/harmonydrill/internal/services"
	"github.com/ryanmoffett1/harmonydrill/internal/srs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatsHandler serves the read side: rating, review schedule and the
// leaderboard.
type StatsHandler struct {
	log *zap.Logger
}

func NewStatsHandler(log *zap.Logger) *StatsHandler {
	return &StatsHandler{log: log}
}

// Rating returns the calling profile's rating, rank and streak.
func (h *StatsHandler) Rating(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	r, err := repository.LoadRating(profileID)
	if err != nil {
		h.log.Error("Failed to load rating", zap.Uint("profileID", profileID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rating"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rating": r,
		"rank":   r.Rank().String(),
	})
}

// ReviewsDue lists the items due for review, most overdue first.
func (h *StatsHandler) ReviewsDue(c *gin.Context) {
	svc, ok := h.reviews(c)
	if !ok {
		return
	}
	now := time.Now().UTC()

	items, err := svc.DueItems(now)
	if err != nil {
		h.log.Error("Failed to list due reviews", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reviews"})
		return
	}
	counts := map[srs.Mode]int{}
	for _, m := range []srs.Mode{srs.ModeChord, srs.ModeInterval, srs.ModeCadence} {
		n, err := svc.DueCount(m, now)
		if err != nil {
			h.log.Error("Failed to count due reviews", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reviews"})
			return
		}
		counts[m] = n
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "dueCounts": counts})
}

// ReviewStats reports maturity buckets and lifetime accuracy.
func (h *StatsHandler) ReviewStats(c *gin.Context) {
	svc, ok := h.reviews(c)
	if !ok {
		return
	}
	stats, err := svc.Statistics(time.Now().UTC())
	if err != nil {
		h.log.Error("Failed to compute review stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load review stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Weakest ranks the review items the player misses most.
func (h *StatsHandler) Weakest(c *gin.Context) {
	svc, ok := h.reviews(c)
	if !ok {
		return
	}
	limit := intQuery(c, "limit", 5)
	weakest, err := svc.WeakestKeys(limit)
	if err != nil {
		h.log.Error("Failed to rank weak keys", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load weak keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"weakKeys": weakest})
}

// Recommendation suggests the next session config from the review
// schedule and the player's rank.
func (h *StatsHandler) Recommendation(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	r, err := repository.LoadRating(profileID)
	if err != nil {
		h.log.Error("Failed to load rating", zap.Uint("profileID", profileID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rating"})
		return
	}
	svc := srs.NewService(repository.NewReviewStore(profileID))
	rec, err := services.Recommend(svc, r, time.Now().UTC())
	if err != nil {
		h.log.Error("Failed to build recommendation", zap.Uint("profileID", profileID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build recommendation"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Leaderboard returns the top sessions by score. Public.
func (h *StatsHandler) Leaderboard(c *gin.Context) {
	size := 20
	if config.Conf != nil && config.Conf.Practice.LeaderboardSize > 0 {
		size = config.Conf.Practice.LeaderboardSize
	}
	entries, err := repository.TopSessions(size)
	if err != nil {
		h.log.Error("Failed to load leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// History lists the calling profile's recent completed sessions.
func (h *StatsHandler) History(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	limit := intQuery(c, "limit", 20)
	sessions, err := repository.RecentSessions(profileID, limit)
	if err != nil {
		h.log.Error("Failed to load session history", zap.Uint("profileID", profileID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *StatsHandler) reviews(c *gin.Context) (*srs.Service, bool) {
	profileID, ok := currentProfileID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return srs.NewService(repository.NewReviewStore(profileID)), true
}

func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 || v > 100 {
		return def
	}
	return v
}
