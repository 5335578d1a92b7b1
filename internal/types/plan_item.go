package types

import "github.com/google/uuid"

const (
	ActivityLearn    = "learn"
	ActivityPractice = "practice"
	ActivityRevise   = "revise"
)

// PlanItem is the serialization shape stored in StudySchedule.PlannedItems.
// UIs and other tooling read this contract to render a day, so field names
// are stable.
type PlanItem struct {
	TopicID         uuid.UUID `json:"topic_id"`
	TopicName       string    `json:"topic_name"`
	Subject         string    `json:"subject"`
	ActivityType    string    `json:"activity_type"`
	DurationMinutes int       `json:"duration_minutes"`
	Priority        float64   `json:"priority"`
	Difficulty      string    `json:"difficulty"`
	Reason          string    `json:"reason"`
}

// ActivityRank orders activity kinds revise > practice > learn.
func ActivityRank(activity string) int {
	switch activity {
	case ActivityRevise:
		return 3
	case ActivityPractice:
		return 2
	case ActivityLearn:
		return 1
	default:
		return 0
	}
}
