package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/services"
)

type CacheHandler struct {
  log      *logger.Logger
  cacheSvc services.CacheService
}

func NewCacheHandler(log *logger.Logger, cacheSvc services.CacheService) *CacheHandler {
  return &CacheHandler{
    log:      log.With("handler", "CacheHandler"),
    cacheSvc: cacheSvc,
  }
}

// GET /api/cache/stats
func (h *CacheHandler) GetStats(c *gin.Context) {
  stats, err := h.cacheSvc.Stats(c.Request.Context())
  if err != nil {
    h.log.Error("GetStats failed", "error", err)
    RespondError(c, http.StatusInternalServerError, "load_cache_stats_failed", err)
    return
  }
  RespondOK(c, gin.H{"stats": stats})
}

type clearCacheRequest struct {
  Days int `json:"days"`
}

// POST /api/cache/clear
// Evicts entries whose last access is older than the given day count.
func (h *CacheHandler) ClearOldEntries(c *gin.Context) {
  var req clearCacheRequest
  if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  days := req.Days
  if days < 0 {
    RespondError(c, http.StatusBadRequest, "invalid_days", errors.New("days must be non-negative"))
    return
  }
  if days == 0 {
    days = 30
  }
  deleted, err := h.cacheSvc.ClearOldCache(c.Request.Context(), days)
  if err != nil {
    h.log.Error("ClearOldEntries failed", "error", err, "older_than_days", days)
    RespondError(c, http.StatusInternalServerError, "clear_cache_failed", err)
    return
  }
  RespondOK(c, gin.H{"deleted": deleted})
}
