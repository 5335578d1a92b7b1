package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudentProfile tracks one learner's mastery state for one topic.
// Created lazily on first interaction, updated by quiz grading and by
// spaced-repetition review updates, never deleted.
type StudentProfile struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_topic,unique" json:"user_id"`
	User            *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TopicID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_topic,unique" json:"topic_id"`
	Topic           *Topic     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TopicID;references:ID" json:"topic,omitempty"`
	MasteryScore    float64    `gorm:"column:mastery_score;not null;default:0" json:"mastery_score"`
	TotalAttempts   int        `gorm:"column:total_attempts;not null;default:0" json:"total_attempts"`
	CorrectAttempts int        `gorm:"column:correct_attempts;not null;default:0" json:"correct_attempts"`
	Accuracy        float64    `gorm:"column:accuracy;not null;default:0" json:"accuracy"`
	EaseFactor      float64    `gorm:"column:ease_factor;not null;default:2.5" json:"ease_factor"`
	RepetitionCount int        `gorm:"column:repetition_count;not null;default:0" json:"repetition_count"`
	NextReviewDate  *time.Time `gorm:"column:next_review_date" json:"next_review_date,omitempty"`
	LastAttemptDate *time.Time `gorm:"column:last_attempt_date" json:"last_attempt_date,omitempty"`
	StrengthLevel   string     `gorm:"column:strength_level" json:"strength_level"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}

func (StudentProfile) TableName() string { return "student_profile" }

func (p *StudentProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// StrengthLabelFor buckets a mastery score into a qualitative label.
func StrengthLabelFor(mastery float64) string {
	switch {
	case mastery >= 0.7:
		return "strong"
	case mastery >= 0.4:
		return "moderate"
	default:
		return "weak"
	}
}
