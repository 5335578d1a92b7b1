package services

import (
  "context"
  "fmt"
  "math"
  "time"

  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/repos"
  "github.com/yungbote/mindmentor-backend/internal/types"
)

// GenerateFunc produces content on a cache miss.
type GenerateFunc func(ctx context.Context) (string, error)

type CacheRequest struct {
  PromptTemplate string
  Params         map[string]interface{}
  Model          string
  ContentType    string
  // ForceRefresh bypasses the lookup and hands the caller freshly generated
  // content. The store keeps first-writer-wins semantics, so an existing
  // entry for the same fingerprint is left in place.
  ForceRefresh bool
}

type CacheConfig struct {
  Enabled bool
  TTLDays int
}

type CacheStats struct {
  repos.CacheAggregates
  AvgAccessesPerEntry     float64 `json:"avg_accesses_per_entry"`
  EstimatedHitRatePercent float64 `json:"estimated_hit_rate_percent"`
}

type CacheService interface {
  GetOrGenerate(ctx context.Context, req CacheRequest, generate GenerateFunc) (string, bool, error)
  Stats(ctx context.Context) (*CacheStats, error)
  ClearOldCache(ctx context.Context, days int) (int64, error)
}

type cacheService struct {
  log  *logger.Logger
  repo repos.LLMCacheRepo
  cfg  CacheConfig
}

func NewCacheService(log *logger.Logger, repo repos.LLMCacheRepo, cfg CacheConfig) CacheService {
  if cfg.TTLDays <= 0 {
    cfg.TTLDays = 7
  }
  return &cacheService{
    log:  log.With("service", "CacheService"),
    repo: repo,
    cfg:  cfg,
  }
}

// GetOrGenerate returns cached content for the request fingerprint when a
// live entry exists, otherwise invokes generate exactly once and writes the
// result through. The second return value reports whether the content came
// from the cache.
func (s *cacheService) GetOrGenerate(ctx context.Context, req CacheRequest, generate GenerateFunc) (string, bool, error) {
  cacheKey := DeriveCacheKey(req.PromptTemplate, req.Params, req.Model)
  log := s.log.With("cache_key", cacheKey, "model", req.Model, "content_type", req.ContentType)

  if s.cfg.Enabled && !req.ForceRefresh {
    entry, err := s.repo.GetByKey(ctx, nil, cacheKey)
    if err != nil {
      // Lookup trouble degrades to a miss; generation still proceeds.
      log.Warn("Cache lookup failed, treating as miss", "error", err)
    } else if entry != nil && !s.expired(entry) {
      if touchErr := s.repo.TouchAccess(ctx, nil, cacheKey); touchErr != nil {
        log.Warn("Cache access bookkeeping failed", "error", touchErr)
      }
      log.Debug("Cache hit")
      return entry.ResponseContent, true, nil
    }
  }

  content, err := generate(ctx)
  if err != nil {
    return "", false, fmt.Errorf("content generation failed: %w", err)
  }

  if s.cfg.Enabled {
    now := time.Now().UTC()
    row := &types.LLMCacheEntry{
      CacheKey:        cacheKey,
      ModelUsed:       req.Model,
      PromptTemplate:  req.PromptTemplate,
      ResponseContent: content,
      ContentType:     req.ContentType,
      CreatedAt:       now,
      LastAccessed:    now,
      AccessCount:     1,
    }
    if _, storeErr := s.repo.Insert(ctx, nil, row); storeErr != nil {
      // The caller still gets the generated content.
      log.Warn("Cache store failed", "error", storeErr)
    }
  }

  log.Debug("Cache miss, generated fresh content")
  return content, false, nil
}

func (s *cacheService) expired(entry *types.LLMCacheEntry) bool {
  ttl := time.Duration(s.cfg.TTLDays) * 24 * time.Hour
  return time.Since(entry.CreatedAt) > ttl
}

func (s *cacheService) Stats(ctx context.Context) (*CacheStats, error) {
  agg, err := s.repo.Aggregates(ctx, nil)
  if err != nil {
    return nil, fmt.Errorf("cache aggregates: %w", err)
  }
  stats := &CacheStats{CacheAggregates: *agg}
  if agg.TotalEntries > 0 {
    stats.AvgAccessesPerEntry = float64(agg.TotalAccesses) / float64(agg.TotalEntries)
  }
  if agg.TotalAccesses > 0 {
    estimatedHits := agg.TotalAccesses - agg.TotalEntries
    if estimatedHits < 0 {
      estimatedHits = 0
    }
    rate := float64(estimatedHits) / float64(agg.TotalAccesses) * 100
    stats.EstimatedHitRatePercent = math.Round(rate*100) / 100
  }
  return stats, nil
}

// ClearOldCache deletes entries not accessed within the given number of
// days and reports how many went away. This is the only deletion path.
func (s *cacheService) ClearOldCache(ctx context.Context, days int) (int64, error) {
  if days <= 0 {
    days = 30
  }
  cutoff := time.Now().UTC().AddDate(0, 0, -days)
  deleted, err := s.repo.DeleteLastAccessedBefore(ctx, nil, cutoff)
  if err != nil {
    return 0, fmt.Errorf("cache eviction: %w", err)
  }
  s.log.Info("Cleared old cache entries", "deleted", deleted, "inactive_days", days)
  return deleted, nil
}
