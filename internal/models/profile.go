package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is one practicing user. Profiles are anonymous: a cookie
// session binds a browser to its row, nothing more.
type Profile struct {
	ID          uint   `gorm:"primaryKey"`
	DisplayName string `gorm:"size:64"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlayerRatingRecord is the persisted skill state, one row per
// profile, rewritten after every completed session.
type PlayerRatingRecord struct {
	ID               uint    `gorm:"primaryKey"`
	ProfileID        uint    `gorm:"uniqueIndex"`
	Profile          Profile `gorm:"foreignKey:ProfileID"`
	Rating           int
	Streak           int
	LastPracticeDate time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReviewItemRecord is one spaced-repetition item. Rows are upserted,
// never deleted; the composite index backs the per-id lookup.
type ReviewItemRecord struct {
	gorm.Model
	ProfileID      uint   `gorm:"index:idx_review_item,unique"`
	Mode           string `gorm:"index:idx_review_item,unique;size:16"`
	Topic          string `gorm:"index:idx_review_item,unique;size:32"`
	Key            string `gorm:"index:idx_review_item,unique;size:8;column:item_key"`
	EaseFactor     float64
	IntervalDays   float64
	DueDate        time.Time
	Repetitions    int
	Lapses         int
	Successes      int
	LastResult     bool
	LastReviewedAt *time.Time
	LastLapseAt    *time.Time
}
