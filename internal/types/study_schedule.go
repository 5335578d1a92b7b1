package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudySchedule is the persisted daily plan for one learner and date.
// PlannedItems holds the serialized, ordered PlanItem list.
type StudySchedule struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_date,unique" json:"user_id"`
	User                 *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Date                 time.Time      `gorm:"column:date;not null;index:idx_user_date,unique" json:"date"`
	PlannedItems         datatypes.JSON `gorm:"column:planned_items" json:"planned_items"`
	TotalMinutes         int            `gorm:"column:total_minutes;not null;default:0" json:"total_minutes"`
	CompletionPercentage float64        `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`
	Completed            bool           `gorm:"column:completed;not null;default:false" json:"completed"`
	Notes                string         `gorm:"column:notes" json:"notes"`
	CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StudySchedule) TableName() string { return "study_schedule" }

func (s *StudySchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
