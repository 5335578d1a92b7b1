package services

import (
	"context"
	"math"
	"testing"

	"github.com/yungbote/mindmentor-backend/internal/types"
)

func newAnalyticsFixture(t *testing.T) (*schedulerFixture, AnalyticsService) {
	t.Helper()
	f := newSchedulerFixture(t, 4)
	return f, NewAnalyticsService(newTestLogger(), f.profileRepo, f.svc)
}

func TestGetLearningOverview_SubjectsSortedByName(t *testing.T) {
	f, svc := newAnalyticsFixture(t)

	physics := f.addTopic(t, "Physics", "Kinematics", 1.0, types.DifficultyMedium)
	maths := f.addTopic(t, "Maths", "Limits", 0.8, types.DifficultyEasy)
	chemistry := f.addTopic(t, "Chemistry", "Stoichiometry", 0.9, types.DifficultyMedium)
	f.seedProfile(t, physics.ID, 0.8, 0.8, 2.5, 1, nil)
	f.seedProfile(t, maths.ID, 0.5, 0.5, 2.5, 1, nil)
	f.seedProfile(t, chemistry.ID, 0.3, 0.3, 2.5, 1, nil)

	overview, err := svc.GetLearningOverview(context.Background(), f.user.ID, 7)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(overview.Subjects) != 3 {
		t.Fatalf("subjects = %d, want 3", len(overview.Subjects))
	}
	want := []string{"Chemistry", "Maths", "Physics"}
	for i, subject := range want {
		if overview.Subjects[i].Subject != subject {
			t.Fatalf("subjects[%d] = %q, want %q", i, overview.Subjects[i].Subject, subject)
		}
	}
}

func TestGetLearningOverview_Aggregates(t *testing.T) {
	f, svc := newAnalyticsFixture(t)

	strong := f.addTopic(t, "Physics", "Optics", 1.0, types.DifficultyMedium)
	weak := f.addTopic(t, "Physics", "Waves", 0.9, types.DifficultyHard)
	f.seedProfile(t, strong.ID, 0.9, 0.9, 2.5, 2, nil)
	f.seedProfile(t, weak.ID, 0.3, 0.3, 2.5, 1, nil)

	overview, err := svc.GetLearningOverview(context.Background(), f.user.ID, 7)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.TopicsStarted != 2 {
		t.Fatalf("topics started = %d, want 2", overview.TopicsStarted)
	}
	if math.Abs(overview.AvgMastery-0.6) > 1e-9 {
		t.Fatalf("avg mastery = %v, want 0.6", overview.AvgMastery)
	}
	if overview.StrongestTopic == nil || overview.StrongestTopic.TopicID != strong.ID {
		t.Fatalf("strongest topic = %+v, want Optics", overview.StrongestTopic)
	}
	if len(overview.WeakestTopics) == 0 || overview.WeakestTopics[0].TopicID != weak.ID {
		t.Fatalf("weakest topics = %+v, want Waves first", overview.WeakestTopics)
	}
	if len(overview.Subjects) != 1 || overview.Subjects[0].WeakTopicCount != 1 {
		t.Fatalf("subject breakdown = %+v, want one Physics entry with a weak topic", overview.Subjects)
	}
	if overview.Schedule == nil {
		t.Fatalf("schedule stats missing")
	}
}
