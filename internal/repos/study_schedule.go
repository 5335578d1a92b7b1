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

type StudyScheduleRepo interface {
  GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (*types.StudySchedule, error)
  LockByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (*types.StudySchedule, error)
  GetByUserAndDateRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) ([]*types.StudySchedule, error)
  Upsert(ctx context.Context, tx *gorm.DB, row *types.StudySchedule) error
  Update(ctx context.Context, tx *gorm.DB, row *types.StudySchedule) error
}

type studyScheduleRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewStudyScheduleRepo(db *gorm.DB, baseLog *logger.Logger) StudyScheduleRepo {
  return &studyScheduleRepo{db: db, log: baseLog.With("repo", "StudyScheduleRepo")}
}

func (r *studyScheduleRepo) GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (*types.StudySchedule, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var row types.StudySchedule
  err := transaction.WithContext(ctx).
    Where("user_id = ? AND date = ?", userID, date).
    First(&row).Error
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &row, nil
}

// LockByUserAndDate reads the row with a row-level lock so concurrent
// read-modify-write cycles on the same day serialize. Callers must hold an
// open transaction. SQLite ignores the locking clause; its writes serialize
// on the database lock instead.
func (r *studyScheduleRepo) LockByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (*types.StudySchedule, error) {
  if tx == nil {
    return nil, errors.New("LockByUserAndDate requires tx")
  }
  var row types.StudySchedule
  err := tx.WithContext(ctx).
    Clauses(clause.Locking{Strength: "UPDATE"}).
    Where("user_id = ? AND date = ?", userID, date).
    First(&row).Error
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &row, nil
}

func (r *studyScheduleRepo) GetByUserAndDateRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) ([]*types.StudySchedule, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.StudySchedule
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
    Order("date ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// Upsert keeps row identity on the update path: a conflict on (user_id,
// date) rewrites the plan fields in place instead of creating a new row.
func (r *studyScheduleRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.StudySchedule) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
      DoUpdates: clause.AssignmentColumns([]string{
        "planned_items", "total_minutes", "completion_percentage",
        "completed", "notes", "updated_at",
      }),
    }).
    Create(row).Error
}

func (r *studyScheduleRepo) Update(ctx context.Context, tx *gorm.DB, row *types.StudySchedule) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).Save(row).Error
}
