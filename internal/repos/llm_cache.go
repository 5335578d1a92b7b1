package repos

import (
  "context"
  "errors"
  "time"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/types"
)

type CacheGroupStat struct {
  Key      string `json:"key"`
  Count    int64  `json:"count"`
  Accesses int64  `json:"accesses"`
}

type CacheAggregates struct {
  TotalEntries  int64            `json:"total_entries"`
  TotalAccesses int64            `json:"total_accesses"`
  ByModel       []CacheGroupStat `json:"by_model"`
  ByContentType []CacheGroupStat `json:"by_content_type"`
}

type LLMCacheRepo interface {
  GetByKey(ctx context.Context, tx *gorm.DB, cacheKey string) (*types.LLMCacheEntry, error)
  TouchAccess(ctx context.Context, tx *gorm.DB, cacheKey string) error
  Insert(ctx context.Context, tx *gorm.DB, row *types.LLMCacheEntry) (*types.LLMCacheEntry, error)
  Aggregates(ctx context.Context, tx *gorm.DB) (*CacheAggregates, error)
  DeleteLastAccessedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type llmCacheRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewLLMCacheRepo(db *gorm.DB, baseLog *logger.Logger) LLMCacheRepo {
  return &llmCacheRepo{db: db, log: baseLog.With("repo", "LLMCacheRepo")}
}

func (r *llmCacheRepo) GetByKey(ctx context.Context, tx *gorm.DB, cacheKey string) (*types.LLMCacheEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var row types.LLMCacheEntry
  err := transaction.WithContext(ctx).Where("cache_key = ?", cacheKey).First(&row).Error
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &row, nil
}

func (r *llmCacheRepo) TouchAccess(ctx context.Context, tx *gorm.DB, cacheKey string) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).
    Model(&types.LLMCacheEntry{}).
    Where("cache_key = ?", cacheKey).
    Updates(map[string]interface{}{
      "last_accessed": time.Now().UTC(),
      "access_count":  gorm.Expr("access_count + 1"),
    }).Error
}

// Insert tolerates a concurrent writer landing the same fingerprint first:
// the conflicting insert becomes a no-op and the surviving row is returned.
func (r *llmCacheRepo) Insert(ctx context.Context, tx *gorm.DB, row *types.LLMCacheEntry) (*types.LLMCacheEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  result := transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "cache_key"}},
      DoNothing: true,
    }).
    Create(row)
  if result.Error != nil {
    return nil, result.Error
  }
  if result.RowsAffected == 0 {
    return r.GetByKey(ctx, transaction, row.CacheKey)
  }
  return row, nil
}

func (r *llmCacheRepo) Aggregates(ctx context.Context, tx *gorm.DB) (*CacheAggregates, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  agg := &CacheAggregates{}
  if err := transaction.WithContext(ctx).
    Model(&types.LLMCacheEntry{}).
    Count(&agg.TotalEntries).Error; err != nil {
    return nil, err
  }
  if err := transaction.WithContext(ctx).
    Model(&types.LLMCacheEntry{}).
    Select("COALESCE(SUM(access_count), 0)").
    Scan(&agg.TotalAccesses).Error; err != nil {
    return nil, err
  }
  if err := transaction.WithContext(ctx).
    Model(&types.LLMCacheEntry{}).
    Select("model_used AS key, COUNT(*) AS count, SUM(access_count) AS accesses").
    Group("model_used").
    Scan(&agg.ByModel).Error; err != nil {
    return nil, err
  }
  if err := transaction.WithContext(ctx).
    Model(&types.LLMCacheEntry{}).
    Select("content_type AS key, COUNT(*) AS count, SUM(access_count) AS accesses").
    Where("content_type <> ''").
    Group("content_type").
    Scan(&agg.ByContentType).Error; err != nil {
    return nil, err
  }
  return agg, nil
}

func (r *llmCacheRepo) DeleteLastAccessedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  result := transaction.WithContext(ctx).
    Where("last_accessed < ?", cutoff).
    Delete(&types.LLMCacheEntry{})
  if result.Error != nil {
    return 0, result.Error
  }
  return result.RowsAffected, nil
}
