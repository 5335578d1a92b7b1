package services

import (
  "context"
  "math"
  "sort"
  "time"

  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"

  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/repos"
  "github.com/yungbote/mindmentor-backend/internal/types"
)

type SubjectBreakdown struct {
  Subject        string  `json:"subject"`
  TopicsStarted  int     `json:"topics_started"`
  AvgMastery     float64 `json:"avg_mastery"`
  TotalAttempts  int     `json:"total_attempts"`
  AvgAccuracy    float64 `json:"avg_accuracy"`
  WeakTopicCount int     `json:"weak_topic_count"`
}

type TopicSummary struct {
  TopicID      uuid.UUID `json:"topic_id"`
  TopicName    string    `json:"topic_name"`
  Subject      string    `json:"subject"`
  MasteryScore float64   `json:"mastery_score"`
  Accuracy     float64   `json:"accuracy"`
}

type LearningOverview struct {
  TopicsStarted  int                `json:"topics_started"`
  AvgMastery     float64            `json:"avg_mastery"`
  TotalAttempts  int                `json:"total_attempts"`
  Subjects       []SubjectBreakdown `json:"subjects"`
  WeakestTopics  []TopicSummary     `json:"weakest_topics"`
  StrongestTopic *TopicSummary      `json:"strongest_topic,omitempty"`
  Schedule       *ScheduleStats     `json:"schedule"`
}

type AnalyticsService interface {
  GetLearningOverview(ctx context.Context, userID uuid.UUID, windowDays int) (*LearningOverview, error)
}

type analyticsService struct {
  log         *logger.Logger
  profileRepo repos.StudentProfileRepo
  scheduler   SchedulerService
}

func NewAnalyticsService(log *logger.Logger, profileRepo repos.StudentProfileRepo, scheduler SchedulerService) AnalyticsService {
  return &analyticsService{
    log:         log.With("service", "AnalyticsService"),
    profileRepo: profileRepo,
    scheduler:   scheduler,
  }
}

// GetLearningOverview is read-only reporting over the same entities the
// scheduler mutates. Profile and schedule reads run concurrently.
func (s *analyticsService) GetLearningOverview(ctx context.Context, userID uuid.UUID, windowDays int) (*LearningOverview, error) {
  if windowDays <= 0 {
    windowDays = 7
  }

  var (
    profiles      []*types.StudentProfile
    scheduleStats *ScheduleStats
  )

  group, groupCtx := errgroup.WithContext(ctx)
  group.Go(func() error {
    var err error
    profiles, err = s.profileRepo.GetAllByUser(groupCtx, nil, userID)
    return err
  })
  group.Go(func() error {
    end := time.Now().UTC()
    start := end.AddDate(0, 0, -windowDays)
    var err error
    scheduleStats, err = s.scheduler.GetScheduleStats(groupCtx, userID, start, end)
    return err
  })
  if err := group.Wait(); err != nil {
    return nil, err
  }

  overview := &LearningOverview{Schedule: scheduleStats}
  overview.TopicsStarted = len(profiles)

  bySubject := make(map[string]*SubjectBreakdown)
  masterySum := 0.0
  var strongest *TopicSummary

  for _, profile := range profiles {
    if profile.Topic == nil {
      continue
    }
    masterySum += profile.MasteryScore
    overview.TotalAttempts += profile.TotalAttempts

    subject := profile.Topic.Subject
    breakdown, ok := bySubject[subject]
    if !ok {
      breakdown = &SubjectBreakdown{Subject: subject}
      bySubject[subject] = breakdown
    }
    breakdown.TopicsStarted++
    breakdown.AvgMastery += profile.MasteryScore
    breakdown.AvgAccuracy += profile.Accuracy
    breakdown.TotalAttempts += profile.TotalAttempts
    if profile.MasteryScore < practiceMasteryCeiling {
      breakdown.WeakTopicCount++
    }

    summary := TopicSummary{
      TopicID:      profile.TopicID,
      TopicName:    profile.Topic.TopicName,
      Subject:      subject,
      MasteryScore: profile.MasteryScore,
      Accuracy:     profile.Accuracy,
    }
    // Profiles arrive ordered weakest first.
    if len(overview.WeakestTopics) < 5 {
      overview.WeakestTopics = append(overview.WeakestTopics, summary)
    }
    if strongest == nil || summary.MasteryScore > strongest.MasteryScore {
      copied := summary
      strongest = &copied
    }
  }

  if len(profiles) > 0 {
    overview.AvgMastery = math.Round(masterySum/float64(len(profiles))*1000) / 1000
  }
  for _, breakdown := range bySubject {
    if breakdown.TopicsStarted > 0 {
      breakdown.AvgMastery = math.Round(breakdown.AvgMastery/float64(breakdown.TopicsStarted)*1000) / 1000
      breakdown.AvgAccuracy = math.Round(breakdown.AvgAccuracy/float64(breakdown.TopicsStarted)*1000) / 1000
    }
    overview.Subjects = append(overview.Subjects, *breakdown)
  }
  sort.Slice(overview.Subjects, func(i, j int) bool {
    return overview.Subjects[i].Subject < overview.Subjects[j].Subject
  })
  overview.StrongestTopic = strongest

  return overview, nil
}
