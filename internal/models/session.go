package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SessionRecord is the persisted summary of one completed practice
// session. Abandoned sessions never produce a row.
type SessionRecord struct {
	ID             string  `gorm:"primaryKey;size:36"` // session UUID
	ProfileID      uint    `gorm:"index"`
	Profile        Profile `gorm:"foreignKey:ProfileID"`
	Difficulty     string  `gorm:"size:16"`
	KeyTier        string  `gorm:"size:16"`
	Timed          bool
	TotalQuestions int
	CorrectAnswers int
	TimeoutCount   int
	Accuracy       float64
	Score          int
	TotalTimeMS    int64
	RatingDelta    int
	CompletedAt    time.Time
	CreatedAt      time.Time
}

// SessionAnswer is one answered question inside a session, kept for
// review screens and per-question analytics.
type SessionAnswer struct {
	gorm.Model
	SessionID      string        `gorm:"index;size:36"`
	QuestionID     string        `gorm:"size:36"`
	Kind           string        `gorm:"size:32"`
	Topic          string        `gorm:"size:32"`
	ItemKey        string        `gorm:"size:8"`
	SubmittedNotes pq.Int64Array `gorm:"type:bigint[]"`
	SubmittedLabel string        `gorm:"size:16"`
	Correct        bool
	HintsUsed      int
}
