package repository

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/ryanmoffett1/harmonydrill/internal/database"
	"github.com/ryanmoffett1/harmonydrill/internal/models"
	"github.com/ryanmoffett1/harmonydrill/internal/quiz"
	"github.com/ryanmoffett1/harmonydrill/internal/rating"
)

// SaveCompletedSessionTx persists a finished session, its answers and
// the updated rating in one transaction. Nothing is written unless the
// whole computation succeeded; an abandoned session never reaches this
// function.
func SaveCompletedSessionTx(profileID uint, cfg quiz.Config, result *quiz.Result, newRating rating.PlayerRating, ratingDelta int, completedAt time.Time) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		rec := models.SessionRecord{
			ID:             result.SessionID,
			ProfileID:      profileID,
			Difficulty:     cfg.Difficulty.String(),
			KeyTier:        cfg.KeyTier.String(),
			Timed:          cfg.Timed,
			TotalQuestions: result.TotalQuestions,
			CorrectAnswers: result.CorrectAnswers,
			TimeoutCount:   result.TimeoutCount,
			Accuracy:       result.Accuracy,
			Score:          result.Score,
			TotalTimeMS:    result.TotalTime.Milliseconds(),
			RatingDelta:    ratingDelta,
			CompletedAt:    completedAt,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		for _, q := range result.Questions {
			answer := result.Answers[q.ID]
			row := models.SessionAnswer{
				SessionID:      result.SessionID,
				QuestionID:     q.ID,
				Kind:           string(q.Kind),
				Topic:          q.Topic(),
				ItemKey:        q.Key,
				SubmittedNotes: submittedNotes(answer),
				SubmittedLabel: answer.Label,
				Correct:        result.IsCorrect[q.ID],
				HintsUsed:      answer.HintsUsed,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		return saveRatingTx(tx, profileID, newRating)
	})
}

// submittedNotes flattens an answer's notes for storage; cadence slot
// answers are concatenated in slot order.
func submittedNotes(a quiz.Answer) pq.Int64Array {
	var out pq.Int64Array
	for _, n := range a.Notes {
		out = append(out, int64(n))
	}
	for _, slot := range a.Slots {
		for _, n := range slot {
			out = append(out, int64(n))
		}
	}
	return out
}

// LeaderboardEntry is one row of the local best-sessions board.
type LeaderboardEntry struct {
	SessionID   string    `json:"sessionId"`
	ProfileID   uint      `json:"profileId"`
	DisplayName string    `json:"displayName"`
	Score       int       `json:"score"`
	Accuracy    float64   `json:"accuracy"`
	TotalTimeMS int64     `json:"totalTimeMs"`
	CompletedAt time.Time `json:"completedAt"`
}

// TopSessions returns the best completed sessions, highest score
// first, faster time breaking ties.
func TopSessions(limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := database.DB.
		Model(&models.SessionRecord{}).
		Select("session_records.id AS session_id, session_records.profile_id, profiles.display_name, session_records.score, session_records.accuracy, session_records.total_time_ms, session_records.completed_at").
		Joins("JOIN profiles ON profiles.id = session_records.profile_id").
		Order("session_records.score DESC, session_records.total_time_ms ASC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}

// RecentSessions lists a profile's latest completed sessions.
func RecentSessions(profileID uint, limit int) ([]models.SessionRecord, error) {
	var recs []models.SessionRecord
	err := database.DB.
		Where("profile_id = ?", profileID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// HasPracticedToday reports whether the profile completed any session
// today (UTC); the review ticker uses it to skip reminder noise.
func HasPracticedToday(profileID uint, now time.Time) (bool, error) {
	dayStart := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	var count int64
	err := database.DB.
		Model(&models.SessionRecord{}).
		Where("profile_id = ? AND completed_at >= ?", profileID, dayStart).
		Count(&count).Error
	return count > 0, err
}

// ProfileIDsWithReviewsDue lists profiles that have at least one
// review item due.
func ProfileIDsWithReviewsDue(asOf time.Time) ([]uint, error) {
	var ids []uint
	err := database.DB.
		Model(&models.ReviewItemRecord{}).
		Distinct("profile_id").
		Where("due_date <= ?", asOf).
		Pluck("profile_id", &ids).Error
	return ids, err
}
