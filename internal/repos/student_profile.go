package repos

import (
  "context"
  "errors"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/types"
)

type StudentProfileRepo interface {
  GetByUserAndTopic(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) (*types.StudentProfile, error)
  GetAllByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.StudentProfile, error)
  GetRevisionDue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dueBy time.Time, focusSubjects []string, excludeIDs []uuid.UUID, limit int) ([]*types.StudentProfile, error)
  GetWeak(ctx context.Context, tx *gorm.DB, userID uuid.UUID, maxMastery float64, focusSubjects []string, excludeIDs []uuid.UUID, limit int) ([]*types.StudentProfile, error)
  Upsert(ctx context.Context, tx *gorm.DB, row *types.StudentProfile) error
}

type studentProfileRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewStudentProfileRepo(db *gorm.DB, baseLog *logger.Logger) StudentProfileRepo {
  return &studentProfileRepo{db: db, log: baseLog.With("repo", "StudentProfileRepo")}
}

func (r *studentProfileRepo) GetByUserAndTopic(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) (*types.StudentProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var row types.StudentProfile
  err := transaction.WithContext(ctx).
    Where("user_id = ? AND topic_id = ?", userID, topicID).
    First(&row).Error
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &row, nil
}

func (r *studentProfileRepo) GetAllByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.StudentProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.StudentProfile
  if err := transaction.WithContext(ctx).
    Preload("Topic").
    Where("user_id = ?", userID).
    Order("mastery_score ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// GetRevisionDue returns profiles whose next review date has arrived and
// whose topic is not yet fully mastered, most overdue and heaviest first.
func (r *studentProfileRepo) GetRevisionDue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dueBy time.Time, focusSubjects []string, excludeIDs []uuid.UUID, limit int) ([]*types.StudentProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.StudentProfile
  query := transaction.WithContext(ctx).
    Joins("JOIN topic ON topic.id = student_profile.topic_id").
    Where("student_profile.user_id = ?", userID).
    Where("student_profile.next_review_date IS NOT NULL AND student_profile.next_review_date <= ?", dueBy).
    Where("student_profile.mastery_score < ?", 1.0)
  if len(focusSubjects) > 0 {
    query = query.Where("topic.subject IN ?", focusSubjects)
  }
  if len(excludeIDs) > 0 {
    query = query.Where("student_profile.topic_id NOT IN ?", excludeIDs)
  }
  if err := query.
    Order("student_profile.next_review_date ASC").
    Order("topic.exam_weight DESC").
    Limit(limit).
    Preload("Topic").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// GetWeak returns started-but-struggling profiles, weakest and heaviest
// first.
func (r *studentProfileRepo) GetWeak(ctx context.Context, tx *gorm.DB, userID uuid.UUID, maxMastery float64, focusSubjects []string, excludeIDs []uuid.UUID, limit int) ([]*types.StudentProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.StudentProfile
  query := transaction.WithContext(ctx).
    Joins("JOIN topic ON topic.id = student_profile.topic_id").
    Where("student_profile.user_id = ?", userID).
    Where("student_profile.mastery_score > 0 AND student_profile.mastery_score < ?", maxMastery)
  if len(focusSubjects) > 0 {
    query = query.Where("topic.subject IN ?", focusSubjects)
  }
  if len(excludeIDs) > 0 {
    query = query.Where("student_profile.topic_id NOT IN ?", excludeIDs)
  }
  if err := query.
    Order("student_profile.mastery_score ASC").
    Order("topic.exam_weight DESC").
    Limit(limit).
    Preload("Topic").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *studentProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.StudentProfile) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns: []clause.Column{{Name: "user_id"}, {Name: "topic_id"}},
      DoUpdates: clause.AssignmentColumns([]string{
        "mastery_score", "total_attempts", "correct_attempts", "accuracy",
        "ease_factor", "repetition_count", "next_review_date",
        "last_attempt_date", "strength_level", "updated_at",
      }),
    }).
    Create(row).Error
}
