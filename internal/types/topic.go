package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Topic is immutable reference data seeded outside this service.
type Topic struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Subject         string    `gorm:"column:subject;not null;index" json:"subject"`
	ChapterName     string    `gorm:"column:chapter_name;not null" json:"chapter_name"`
	TopicName       string    `gorm:"column:topic_name;not null" json:"topic_name"`
	ExamWeight      float64   `gorm:"column:exam_weight;not null" json:"exam_weight"`
	DifficultyLevel string    `gorm:"column:difficulty_level;not null;default:'Medium'" json:"difficulty_level"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (Topic) TableName() string { return "topic" }

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// DifficultyRank orders tiers Easy < Medium < Hard. Unknown tiers sort last.
func DifficultyRank(level string) int {
	switch level {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	default:
		return 3
	}
}
