package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ryanmoffett1/harmonydrill/internal/database"
	"github.com/ryanmoffett1/harmonydrill/internal/models"
	"github.com/ryanmoffett1/harmonydrill/internal/quiz"
	"github.com/ryanmoffett1/harmonydrill/internal/rating"
	"github.com/ryanmoffett1/harmonydrill/internal/srs"
	"github.com/ryanmoffett1/harmonydrill/internal/theory"
)

func setupDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_foreign_keys=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		database.DB = nil
	})
}

func TestProfileRoundTrip(t *testing.T) {
	setupDB(t)

	p, err := CreateProfile("anonymous")
	require.NoError(t, err)
	require.NotZero(t, p.ID)

	loaded, err := GetProfileByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", loaded.DisplayName)

	require.NoError(t, UpdateProfileName(context.Background(), p.ID, "ryan"))
	loaded, err = GetProfileByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ryan", loaded.DisplayName)
}

func TestLoadRatingDefaultsWhenMissing(t *testing.T) {
	setupDB(t)
	r, err := LoadRating(99)
	require.NoError(t, err)
	assert.Zero(t, r.Rating)
	assert.Zero(t, r.Streak)
}

func TestReviewStoreImplementsSRS(t *testing.T) {
	setupDB(t)
	p, err := CreateProfile("srs")
	require.NoError(t, err)

	var store srs.Store = NewReviewStore(p.ID)
	svc := srs.NewService(store)
	now := time.Now().UTC().Truncate(time.Second)

	id := srs.ItemID{Mode: srs.ModeChord, Topic: "maj7", Key: "C"}
	item, err := svc.RecordResult(id, true, now)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Repetitions)

	// The second result must load the persisted state, not start over.
	item, err = svc.RecordResult(id, true, now)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Repetitions)
	assert.Equal(t, srs.SecondSeedInterval, item.IntervalDays)

	// Items are scoped per profile.
	other := srs.NewService(NewReviewStore(p.ID + 1))
	items, err := other.DueItems(now.Add(100 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Empty(t, items)

	stats, err := svc.Statistics(now)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalItems)
}

func completedResult(t *testing.T) (quiz.Config, *quiz.Result) {
	t.Helper()
	cfg := quiz.Config{
		QuestionCount: 2,
		Difficulty:    theory.Beginner,
		KeyTier:       theory.KeyTierEasy,
		QuestionTypes: []quiz.Kind{quiz.KindAllTones},
	}
	s := quiz.NewSession(theory.DefaultCatalog(), cfg)
	q, err := s.Start(nil)
	require.NoError(t, err)

	for {
		var notes []int
		for pc := range q.Expected.Sets[0] {
			notes = append(notes, 60+int(pc))
		}
		step, err := s.SubmitAnswer(quiz.Answer{Notes: notes})
		require.NoError(t, err)
		if step.Completed {
			return cfg, step.Result
		}
		q = step.Next
	}
}

func TestSaveCompletedSessionTx(t *testing.T) {
	setupDB(t)
	p, err := CreateProfile("player")
	require.NoError(t, err)

	cfg, result := completedResult(t)
	now := time.Now().UTC()
	newRating := rating.PlayerRating{Rating: 35, Streak: 1, LastPracticeDate: now}

	require.NoError(t, SaveCompletedSessionTx(p.ID, cfg, result, newRating, 35, now))

	var rec models.SessionRecord
	require.NoError(t, database.DB.First(&rec, "id = ?", result.SessionID).Error)
	assert.Equal(t, 2, rec.TotalQuestions)
	assert.Equal(t, 100, rec.Score)
	assert.Equal(t, 35, rec.RatingDelta)

	var answers []models.SessionAnswer
	require.NoError(t, database.DB.Where("session_id = ?", result.SessionID).Find(&answers).Error)
	assert.Len(t, answers, 2)

	loaded, err := LoadRating(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, loaded.Rating)

	// A rewrite of the rating on the next session updates in place.
	newRating.Rating = 70
	_, result2 := completedResult(t)
	require.NoError(t, SaveCompletedSessionTx(p.ID, cfg, result2, newRating, 35, now))
	loaded, err = LoadRating(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, loaded.Rating)

	var count int64
	require.NoError(t, database.DB.Model(&models.PlayerRatingRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "one rating row per profile")
}

func TestTopSessions(t *testing.T) {
	setupDB(t)
	p, err := CreateProfile("leader")
	require.NoError(t, err)

	now := time.Now().UTC()
	scores := []int{50, 100, 80}
	for i, score := range scores {
		rec := models.SessionRecord{
			ID:             "s-" + string(rune('a'+i)),
			ProfileID:      p.ID,
			TotalQuestions: 10,
			Score:          score,
			TotalTimeMS:    int64(1000 * (i + 1)),
			CompletedAt:    now,
		}
		require.NoError(t, database.DB.Create(&rec).Error)
	}

	top, err := TopSessions(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 100, top[0].Score)
	assert.Equal(t, 80, top[1].Score)
	assert.Equal(t, "leader", top[0].DisplayName)
}

func TestProfileIDsWithReviewsDue(t *testing.T) {
	setupDB(t)
	p1, _ := CreateProfile("due")
	p2, _ := CreateProfile("not-due")
	now := time.Now().UTC()

	due := srs.NewService(NewReviewStore(p1.ID))
	_, err := due.RecordResult(srs.ItemID{Mode: srs.ModeChord, Topic: "m7", Key: "F"}, false, now)
	require.NoError(t, err)

	later := srs.NewService(NewReviewStore(p2.ID))
	_, err = later.RecordResult(srs.ItemID{Mode: srs.ModeChord, Topic: "m7", Key: "F"}, true, now)
	require.NoError(t, err)

	ids, err := ProfileIDsWithReviewsDue(now)
	require.NoError(t, err)
	assert.Equal(t, []uint{p1.ID}, ids)
}
