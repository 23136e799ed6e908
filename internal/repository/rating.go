package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ryanmoffett1/harmonydrill/internal/database"
	"github.com/ryanmoffett1/harmonydrill/internal/models"
	"github.com/ryanmoffett1/harmonydrill/internal/rating"
)

// LoadRating returns the profile's persisted rating, or a zero-valued
// rating when none exists yet (first session).
func LoadRating(profileID uint) (rating.PlayerRating, error) {
	var rec models.PlayerRatingRecord
	err := database.DB.First(&rec, "profile_id = ?", profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rating.PlayerRating{}, nil
	}
	if err != nil {
		return rating.PlayerRating{}, err
	}
	return rating.PlayerRating{
		Rating:           rec.Rating,
		Streak:           rec.Streak,
		LastPracticeDate: rec.LastPracticeDate,
	}, nil
}

func ratingRecord(profileID uint, r rating.PlayerRating) models.PlayerRatingRecord {
	return models.PlayerRatingRecord{
		ProfileID:        profileID,
		Rating:           r.Rating,
		Streak:           r.Streak,
		LastPracticeDate: r.LastPracticeDate,
	}
}

func saveRatingTx(tx *gorm.DB, profileID uint, r rating.PlayerRating) error {
	var rec models.PlayerRatingRecord
	err := tx.First(&rec, "profile_id = ?", profileID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = ratingRecord(profileID, r)
		return tx.Create(&rec).Error
	case err != nil:
		return err
	default:
		rec.Rating = r.Rating
		rec.Streak = r.Streak
		rec.LastPracticeDate = r.LastPracticeDate
		return tx.Save(&rec).Error
	}
}
