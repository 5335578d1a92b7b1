package handlers

import (
  "net/http"
  "strconv"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/services"
)

type AnalyticsHandler struct {
  log          *logger.Logger
  analyticsSvc services.AnalyticsService
}

func NewAnalyticsHandler(log *logger.Logger, analyticsSvc services.AnalyticsService) *AnalyticsHandler {
  return &AnalyticsHandler{
    log:          log.With("handler", "AnalyticsHandler"),
    analyticsSvc: analyticsSvc,
  }
}

// GET /api/analytics/overview?user_id=...&window_days=7
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
  userID, err := uuid.Parse(c.Query("user_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
    return
  }
  windowDays := 7
  if raw := c.Query("window_days"); raw != "" {
    parsed, err := strconv.Atoi(raw)
    if err != nil || parsed <= 0 {
      RespondError(c, http.StatusBadRequest, "invalid_window_days", err)
      return
    }
    windowDays = parsed
  }
  overview, err := h.analyticsSvc.GetLearningOverview(c.Request.Context(), userID, windowDays)
  if err != nil {
    h.log.Error("GetOverview failed", "error", err, "user_id", userID)
    RespondError(c, http.StatusInternalServerError, "load_overview_failed", err)
    return
  }
  RespondOK(c, gin.H{"overview": overview})
}
