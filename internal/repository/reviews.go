package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ryanmoffett1/harmonydrill/internal/database"
	"github.com/ryanmoffett1/harmonydrill/internal/models"
	"github.com/ryanmoffett1/harmonydrill/internal/srs"
)

// ReviewStore is the gorm-backed srs.Store for one profile. Each
// profile's items live in the same table, scoped by profile_id through
// the unique composite index.
type ReviewStore struct {
	ProfileID uint
}

// NewReviewStore scopes the review-item table to a profile.
func NewReviewStore(profileID uint) *ReviewStore {
	return &ReviewStore{ProfileID: profileID}
}

func (s *ReviewStore) Get(id srs.ItemID) (srs.Item, bool, error) {
	var rec models.ReviewItemRecord
	err := database.DB.
		Where("profile_id = ? AND mode = ? AND topic = ? AND item_key = ?",
			s.ProfileID, string(id.Mode), id.Topic, id.Key).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return srs.Item{}, false, nil
	}
	if err != nil {
		return srs.Item{}, false, err
	}
	return itemFromRecord(rec), true, nil
}

func (s *ReviewStore) Put(item srs.Item) error {
	rec := recordFromItem(s.ProfileID, item)

	var existing models.ReviewItemRecord
	err := database.DB.
		Where("profile_id = ? AND mode = ? AND topic = ? AND item_key = ?",
			s.ProfileID, rec.Mode, rec.Topic, rec.Key).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return database.DB.Create(&rec).Error
	case err != nil:
		return err
	default:
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		return database.DB.Save(&rec).Error
	}
}

func (s *ReviewStore) All() ([]srs.Item, error) {
	var recs []models.ReviewItemRecord
	if err := database.DB.Where("profile_id = ?", s.ProfileID).Find(&recs).Error; err != nil {
		return nil, err
	}
	items := make([]srs.Item, 0, len(recs))
	for _, rec := range recs {
		items = append(items, itemFromRecord(rec))
	}
	return items, nil
}

func itemFromRecord(rec models.ReviewItemRecord) srs.Item {
	item := srs.Item{
		ID: srs.ItemID{
			Mode:  srs.Mode(rec.Mode),
			Topic: rec.Topic,
			Key:   rec.Key,
		},
		EaseFactor:   rec.EaseFactor,
		IntervalDays: rec.IntervalDays,
		Due:          rec.DueDate,
		Repetitions:  rec.Repetitions,
		Lapses:       rec.Lapses,
		Successes:    rec.Successes,
		LastResult:   rec.LastResult,
		LastLapse:    rec.LastLapseAt,
	}
	if rec.LastReviewedAt != nil {
		item.LastReviewed = *rec.LastReviewedAt
	}
	return item
}

func recordFromItem(profileID uint, item srs.Item) models.ReviewItemRecord {
	rec := models.ReviewItemRecord{
		ProfileID:    profileID,
		Mode:         string(item.ID.Mode),
		Topic:        item.ID.Topic,
		Key:          item.ID.Key,
		EaseFactor:   item.EaseFactor,
		IntervalDays: item.IntervalDays,
		DueDate:      item.Due,
		Repetitions:  item.Repetitions,
		Lapses:       item.Lapses,
		Successes:    item.Successes,
		LastResult:   item.LastResult,
		LastLapseAt:  item.LastLapse,
	}
	if !item.LastReviewed.IsZero() {
		t := item.LastReviewed
		rec.LastReviewedAt = &t
	}
	return rec
}
