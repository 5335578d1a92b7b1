package services

import (
  "context"
  "encoding/json"
  "fmt"
  "math"
  "sort"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/repos"
  "github.com/yungbote/mindmentor-backend/internal/types"
)

// Activity durations in minutes.
const (
  LearnDuration    = 60
  ReviseDuration   = 30
  PracticeDuration = 45
)

// Per-day candidate caps for each scheduling source.
const (
  revisionCandidateCap = 5
  practiceCandidateCap = 2
  learnCandidateCap    = 3
)

// Mastery below this needs practice; at or above it the topic holds its own.
const practiceMasteryCeiling = 0.6

const defaultDailyHours = 4.0

// DailySchedule is the in-memory shape of one generated day. It is not
// persisted until SaveSchedule is called.
type DailySchedule struct {
  Date                 time.Time        `json:"date"`
  Items                []types.PlanItem `json:"items"`
  TotalMinutes         int              `json:"total_minutes"`
  CompletionPercentage float64          `json:"completion_percentage"`
  Notes                string           `json:"notes"`
}

type ScheduleStats struct {
  TotalDays            int     `json:"total_days"`
  CompletedDays        int     `json:"completed_days"`
  AvgCompletion        float64 `json:"avg_completion"`
  TotalTopicsScheduled int     `json:"total_topics_scheduled"`
  TotalTopicsCompleted int     `json:"total_topics_completed"`
}

type SchedulerService interface {
  GenerateSchedule(ctx context.Context, userID uuid.UUID, startDate time.Time, numDays int, focusSubjects []string) ([]*DailySchedule, error)
  SaveSchedule(ctx context.Context, userID uuid.UUID, schedule *DailySchedule) error
  MarkItemCompleted(ctx context.Context, userID uuid.UUID, date time.Time, topicID uuid.UUID, quality *int) (bool, error)
  GetScheduleStats(ctx context.Context, userID uuid.UUID, start, end time.Time) (*ScheduleStats, error)
  UpdateNextReviewDate(ctx context.Context, userID, topicID uuid.UUID, quality int) error
}

type schedulerService struct {
  db           *gorm.DB
  log          *logger.Logger
  userRepo     repos.UserRepo
  topicRepo    repos.TopicRepo
  profileRepo  repos.StudentProfileRepo
  scheduleRepo repos.StudyScheduleRepo
}

func NewSchedulerService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, topicRepo repos.TopicRepo, profileRepo repos.StudentProfileRepo, scheduleRepo repos.StudyScheduleRepo) SchedulerService {
  return &schedulerService{
    db:           db,
    log:          log.With("service", "SchedulerService"),
    userRepo:     userRepo,
    topicRepo:    topicRepo,
    profileRepo:  profileRepo,
    scheduleRepo: scheduleRepo,
  }
}

func dateOnly(t time.Time) time.Time {
  y, m, d := t.UTC().Date()
  return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dailyBudgetMinutes degrades to the 4-hour default whenever the user row
// is missing or unreadable; schedule generation never fails on it.
func (s *schedulerService) dailyBudgetMinutes(ctx context.Context, userID uuid.UUID) int {
  user, err := s.userRepo.GetByID(ctx, nil, userID)
  if err != nil {
    s.log.Warn("Could not load user, falling back to default study budget", "user_id", userID, "error", err)
    return int(defaultDailyHours * 60)
  }
  if user == nil || user.DailyHours <= 0 {
    return int(defaultDailyHours * 60)
  }
  return int(user.DailyHours * 60)
}

// GenerateSchedule builds one plan per day in [startDate, startDate+numDays).
// Topics never repeat across the generated batch. Completion and notes from
// a previously saved plan for the same date carry over into the fresh
// object; nothing is persisted here.
func (s *schedulerService) GenerateSchedule(ctx context.Context, userID uuid.UUID, startDate time.Time, numDays int, focusSubjects []string) ([]*DailySchedule, error) {
  if numDays <= 0 {
    numDays = 7
  }
  budget := s.dailyBudgetMinutes(ctx, userID)
  start := dateOnly(startDate)

  scheduled := make(map[uuid.UUID]bool)
  schedules := make([]*DailySchedule, 0, numDays)

  for offset := 0; offset < numDays; offset++ {
    day := start.AddDate(0, 0, offset)

    items, err := s.buildDailyItems(ctx, userID, day, focusSubjects, scheduled, budget)
    if err != nil {
      return nil, fmt.Errorf("build items for %s: %w", day.Format("2006-01-02"), err)
    }
    for _, item := range items {
      scheduled[item.TopicID] = true
    }

    totalMinutes := 0
    for _, item := range items {
      totalMinutes += item.DurationMinutes
    }

    completion := 0.0
    notes := ""
    existing, err := s.scheduleRepo.GetByUserAndDate(ctx, nil, userID, day)
    if err != nil {
      return nil, fmt.Errorf("load existing schedule for %s: %w", day.Format("2006-01-02"), err)
    }
    if existing != nil {
      completion = existing.CompletionPercentage
      notes = existing.Notes
    }

    schedules = append(schedules, &DailySchedule{
      Date:                 day,
      Items:                items,
      TotalMinutes:         totalMinutes,
      CompletionPercentage: completion,
      Notes:                notes,
    })
  }

  return schedules, nil
}

func (s *schedulerService) buildDailyItems(ctx context.Context, userID uuid.UUID, day time.Time, focusSubjects []string, scheduled map[uuid.UUID]bool, budget int) ([]types.PlanItem, error) {
  items := make([]types.PlanItem, 0, revisionCandidateCap+practiceCandidateCap+learnCandidateCap)
  remaining := budget

  exclude := make([]uuid.UUID, 0, len(scheduled))
  for id := range scheduled {
    exclude = append(exclude, id)
  }

  // 1. Topics due for revision, the highest-priority source.
  due, err := s.profileRepo.GetRevisionDue(ctx, nil, userID, day, focusSubjects, exclude, revisionCandidateCap)
  if err != nil {
    return nil, fmt.Errorf("revision-due query: %w", err)
  }
  for _, profile := range due {
    if remaining < ReviseDuration || profile.Topic == nil {
      continue
    }
    items = append(items, types.PlanItem{
      TopicID:         profile.TopicID,
      TopicName:       profile.Topic.TopicName,
      Subject:         profile.Topic.Subject,
      ActivityType:    types.ActivityRevise,
      DurationMinutes: ReviseDuration,
      Priority:        3.0 + profile.Topic.ExamWeight,
      Difficulty:      profile.Topic.DifficultyLevel,
      Reason:          fmt.Sprintf("Due for revision (Mastery: %d%%)", int(profile.MasteryScore*100)),
    })
    remaining -= ReviseDuration
    exclude = append(exclude, profile.TopicID)
  }

  // 2. Weak topics needing practice.
  if remaining >= PracticeDuration {
    weak, err := s.profileRepo.GetWeak(ctx, nil, userID, practiceMasteryCeiling, focusSubjects, exclude, practiceCandidateCap)
    if err != nil {
      return nil, fmt.Errorf("weak-topic query: %w", err)
    }
    for _, profile := range weak {
      if remaining < PracticeDuration || profile.Topic == nil {
        continue
      }
      items = append(items, types.PlanItem{
        TopicID:         profile.TopicID,
        TopicName:       profile.Topic.TopicName,
        Subject:         profile.Topic.Subject,
        ActivityType:    types.ActivityPractice,
        DurationMinutes: PracticeDuration,
        Priority:        2.0 + profile.Topic.ExamWeight,
        Difficulty:      profile.Topic.DifficultyLevel,
        Reason:          fmt.Sprintf("Weak area (Mastery: %d%%, Accuracy: %d%%)", int(profile.MasteryScore*100), int(profile.Accuracy*100)),
      })
      remaining -= PracticeDuration
      exclude = append(exclude, profile.TopicID)
    }
  }

  // 3. New topics, pulled last; easier-but-important topics surface first.
  if remaining >= LearnDuration {
    fresh, err := s.topicRepo.GetUnstartedForUser(ctx, nil, userID, focusSubjects, exclude)
    if err != nil {
      return nil, fmt.Errorf("new-topic query: %w", err)
    }
    sort.SliceStable(fresh, func(i, j int) bool {
      if fresh[i].ExamWeight != fresh[j].ExamWeight {
        return fresh[i].ExamWeight > fresh[j].ExamWeight
      }
      return types.DifficultyRank(fresh[i].DifficultyLevel) < types.DifficultyRank(fresh[j].DifficultyLevel)
    })
    picked := 0
    for _, topic := range fresh {
      if picked >= learnCandidateCap || remaining < LearnDuration {
        break
      }
      items = append(items, types.PlanItem{
        TopicID:         topic.ID,
        TopicName:       topic.TopicName,
        Subject:         topic.Subject,
        ActivityType:    types.ActivityLearn,
        DurationMinutes: LearnDuration,
        Priority:        1.0 + topic.ExamWeight,
        Difficulty:      topic.DifficultyLevel,
        Reason:          fmt.Sprintf("High priority topic (Exam weight: %.1f)", topic.ExamWeight),
      })
      remaining -= LearnDuration
      picked++
    }
  }

  // revise > practice > learn, ties broken by the per-item priority score.
  sort.SliceStable(items, func(i, j int) bool {
    ri, rj := types.ActivityRank(items[i].ActivityType), types.ActivityRank(items[j].ActivityType)
    if ri != rj {
      return ri > rj
    }
    return items[i].Priority > items[j].Priority
  })

  return items, nil
}

// SaveSchedule upserts the plan for (user, date). Saving the same plan
// twice is idempotent.
func (s *schedulerService) SaveSchedule(ctx context.Context, userID uuid.UUID, schedule *DailySchedule) error {
  if schedule == nil {
    return fmt.Errorf("nil schedule")
  }
  itemsJSON, err := json.Marshal(schedule.Items)
  if err != nil {
    return fmt.Errorf("serialize plan items: %w", err)
  }
  row := &types.StudySchedule{
    UserID:               userID,
    Date:                 dateOnly(schedule.Date),
    PlannedItems:         itemsJSON,
    TotalMinutes:         schedule.TotalMinutes,
    CompletionPercentage: schedule.CompletionPercentage,
    Completed:            schedule.CompletionPercentage >= 100,
    Notes:                schedule.Notes,
  }
  if err := s.scheduleRepo.Upsert(ctx, nil, row); err != nil {
    return fmt.Errorf("save schedule: %w", err)
  }
  return nil
}

// originalItemCount recovers the freshly-generated item count from the
// remaining items plus the recorded completion percentage. Completion only
// moves in whole-item steps, so the division rounds back exactly.
func originalItemCount(remaining int, completionPct float64) int {
  if completionPct <= 0 || completionPct >= 100 {
    return remaining
  }
  return int(math.Round(float64(remaining) / (1 - completionPct/100)))
}

// MarkItemCompleted removes the topic's item from the persisted plan and
// advances the completion percentage. Returns false when no plan exists for
// the date or the topic is no longer present (already completed); the
// second call for the same topic never double-applies the recall update.
// The read-modify-write runs in one transaction with the schedule row
// locked, so concurrent completions for different topics on the same date
// cannot lose updates.
func (s *schedulerService) MarkItemCompleted(ctx context.Context, userID uuid.UUID, date time.Time, topicID uuid.UUID, quality *int) (bool, error) {
  if quality != nil && (*quality < 0 || *quality > 5) {
    return false, fmt.Errorf("%w: got %d", ErrInvalidQuality, *quality)
  }

  day := dateOnly(date)
  completed := false

  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    row, err := s.scheduleRepo.LockByUserAndDate(ctx, tx, userID, day)
    if err != nil {
      return err
    }
    if row == nil {
      return nil
    }

    var items []types.PlanItem
    if len(row.PlannedItems) > 0 {
      if err := json.Unmarshal(row.PlannedItems, &items); err != nil {
        return fmt.Errorf("parse planned items: %w", err)
      }
    }

    kept := items[:0:0]
    for _, item := range items {
      if item.TopicID != topicID {
        kept = append(kept, item)
      }
    }
    if len(kept) == len(items) {
      // Topic not on the plan (or already completed): no-op.
      return nil
    }

    original := originalItemCount(len(items), row.CompletionPercentage)
    pct := 0.0
    if original > 0 {
      pct = float64(original-len(kept)) / float64(original) * 100
    }

    keptJSON, err := json.Marshal(kept)
    if err != nil {
      return fmt.Errorf("serialize plan items: %w", err)
    }
    row.PlannedItems = keptJSON
    row.CompletionPercentage = pct
    row.Completed = pct >= 100
    if err := s.scheduleRepo.Update(ctx, tx, row); err != nil {
      return err
    }

    if quality != nil {
      if err := s.applyReview(ctx, tx, userID, topicID, *quality); err != nil {
        return err
      }
    }

    completed = true
    return nil
  })
  if err != nil {
    return false, fmt.Errorf("mark item completed: %w", err)
  }
  return completed, nil
}

// applyReview persists an SM-2 update onto the learner's profile. Missing
// profiles are a silent no-op, matching the lazy-creation model.
func (s *schedulerService) applyReview(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID, quality int) error {
  profile, err := s.profileRepo.GetByUserAndTopic(ctx, tx, userID, topicID)
  if err != nil {
    return err
  }
  if profile == nil {
    return nil
  }

  result, err := SM2Update(profile.EaseFactor, profile.RepetitionCount, quality)
  if err != nil {
    return err
  }

  nextReview := dateOnly(time.Now()).AddDate(0, 0, result.IntervalDays)
  profile.EaseFactor = result.EaseFactor
  profile.RepetitionCount = result.RepetitionCount
  profile.NextReviewDate = &nextReview
  return s.profileRepo.Upsert(ctx, tx, profile)
}

func (s *schedulerService) UpdateNextReviewDate(ctx context.Context, userID, topicID uuid.UUID, quality int) error {
  if quality < 0 || quality > 5 {
    return fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
  }
  return s.applyReview(ctx, nil, userID, topicID, quality)
}

// GetScheduleStats aggregates saved plans across [start, end]. Items
// completed per day are approximated as round(item_count x completion/100).
func (s *schedulerService) GetScheduleStats(ctx context.Context, userID uuid.UUID, start, end time.Time) (*ScheduleStats, error) {
  rows, err := s.scheduleRepo.GetByUserAndDateRange(ctx, nil, userID, dateOnly(start), dateOnly(end))
  if err != nil {
    return nil, fmt.Errorf("schedule stats: %w", err)
  }

  stats := &ScheduleStats{}
  if len(rows) == 0 {
    return stats, nil
  }

  stats.TotalDays = len(rows)
  completionSum := 0.0
  for _, row := range rows {
    if row.Completed {
      stats.CompletedDays++
    }
    completionSum += row.CompletionPercentage

    var items []types.PlanItem
    if len(row.PlannedItems) > 0 {
      if err := json.Unmarshal(row.PlannedItems, &items); err != nil {
        s.log.Warn("Skipping unparseable planned items in stats", "schedule_id", row.ID, "error", err)
        continue
      }
    }
    original := originalItemCount(len(items), row.CompletionPercentage)
    stats.TotalTopicsScheduled += original
    stats.TotalTopicsCompleted += int(math.Round(float64(original) * row.CompletionPercentage / 100))
  }
  stats.AvgCompletion = math.Round(completionSum/float64(stats.TotalDays)*10) / 10

  return stats, nil
}
