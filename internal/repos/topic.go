package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/types"
)

type TopicRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.Topic) ([]*types.Topic, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Topic, error)
  GetAll(ctx context.Context, tx *gorm.DB, subject string) ([]*types.Topic, error)
  GetUnstartedForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, focusSubjects []string, excludeIDs []uuid.UUID) ([]*types.Topic, error)
}

type topicRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
  return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (r *topicRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Topic) ([]*types.Topic, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(rows) == 0 {
    return []*types.Topic{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *topicRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Topic, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var row types.Topic
  err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &row, nil
}

func (r *topicRepo) GetAll(ctx context.Context, tx *gorm.DB, subject string) ([]*types.Topic, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Topic
  query := transaction.WithContext(ctx).Order("subject, chapter_name, topic_name")
  if subject != "" {
    query = query.Where("subject = ?", subject)
  }
  if err := query.Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// GetUnstartedForUser returns topics the user has no profile for yet.
func (r *topicRepo) GetUnstartedForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, focusSubjects []string, excludeIDs []uuid.UUID) ([]*types.Topic, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Topic
  query := transaction.WithContext(ctx).
    Where("NOT EXISTS (SELECT 1 FROM student_profile sp WHERE sp.user_id = ? AND sp.topic_id = topic.id)", userID)
  if len(focusSubjects) > 0 {
    query = query.Where("subject IN ?", focusSubjects)
  }
  if len(excludeIDs) > 0 {
    query = query.Where("id NOT IN ?", excludeIDs)
  }
  if err := query.Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
