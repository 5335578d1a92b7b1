package handlers

import (
  "net/http"
  "time"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/services"
)

type ScheduleHandler struct {
  log       *logger.Logger
  scheduler services.SchedulerService
}

func NewScheduleHandler(log *logger.Logger, scheduler services.SchedulerService) *ScheduleHandler {
  return &ScheduleHandler{
    log:       log.With("handler", "ScheduleHandler"),
    scheduler: scheduler,
  }
}

type generateScheduleRequest struct {
  UserID        uuid.UUID `json:"user_id" binding:"required"`
  StartDate     string    `json:"start_date"`
  NumDays       int       `json:"num_days"`
  FocusSubjects []string  `json:"focus_subjects"`
  Save          bool      `json:"save"`
}

// POST /api/schedule/generate
// Builds a multi-day plan. With save=true each day is persisted as well.
func (h *ScheduleHandler) GenerateSchedule(c *gin.Context) {
  var req generateScheduleRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  start := time.Now().UTC()
  if req.StartDate != "" {
    parsed, err := parseDate(req.StartDate)
    if err != nil {
      RespondError(c, http.StatusBadRequest, "invalid_start_date", err)
      return
    }
    start = parsed
  }
  numDays := req.NumDays
  if numDays <= 0 {
    numDays = 7
  }
  days, err := h.scheduler.GenerateSchedule(c.Request.Context(), req.UserID, start, numDays, req.FocusSubjects)
  if err != nil {
    h.log.Error("GenerateSchedule failed", "error", err, "user_id", req.UserID)
    RespondError(c, http.StatusInternalServerError, "generate_schedule_failed", err)
    return
  }
  if req.Save {
    for _, day := range days {
      if err := h.scheduler.SaveSchedule(c.Request.Context(), req.UserID, day); err != nil {
        h.log.Error("SaveSchedule failed", "error", err, "user_id", req.UserID, "date", day.Date)
        RespondError(c, http.StatusInternalServerError, "save_schedule_failed", err)
        return
      }
    }
  }
  RespondOK(c, gin.H{"schedules": days, "saved": req.Save})
}

type saveScheduleRequest struct {
  UserID   uuid.UUID               `json:"user_id" binding:"required"`
  Schedule *services.DailySchedule `json:"schedule" binding:"required"`
}

// POST /api/schedule/save
func (h *ScheduleHandler) SaveSchedule(c *gin.Context) {
  var req saveScheduleRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  if err := h.scheduler.SaveSchedule(c.Request.Context(), req.UserID, req.Schedule); err != nil {
    h.log.Error("SaveSchedule failed", "error", err, "user_id", req.UserID)
    RespondError(c, http.StatusInternalServerError, "save_schedule_failed", err)
    return
  }
  RespondOK(c, gin.H{"saved": true})
}

type completeItemRequest struct {
  UserID  uuid.UUID `json:"user_id" binding:"required"`
  Date    string    `json:"date" binding:"required"`
  TopicID uuid.UUID `json:"topic_id" binding:"required"`
  Quality *int      `json:"quality"`
}

// POST /api/schedule/complete
// Marks one plan item done. Optional quality (0..5) also feeds the
// recall model and moves the topic's next review date.
func (h *ScheduleHandler) CompleteItem(c *gin.Context) {
  var req completeItemRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  date, err := parseDate(req.Date)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_date", err)
    return
  }
  changed, err := h.scheduler.MarkItemCompleted(c.Request.Context(), req.UserID, date, req.TopicID, req.Quality)
  if err != nil {
    h.log.Error("CompleteItem failed", "error", err, "user_id", req.UserID, "topic_id", req.TopicID)
    RespondError(c, http.StatusInternalServerError, "complete_item_failed", err)
    return
  }
  RespondOK(c, gin.H{"changed": changed})
}

// GET /api/schedule/stats?user_id=...&start=...&end=...
func (h *ScheduleHandler) GetStats(c *gin.Context) {
  userID, err := uuid.Parse(c.Query("user_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
    return
  }
  end := time.Now().UTC()
  start := end.AddDate(0, 0, -7)
  if raw := c.Query("start"); raw != "" {
    if start, err = parseDate(raw); err != nil {
      RespondError(c, http.StatusBadRequest, "invalid_start", err)
      return
    }
  }
  if raw := c.Query("end"); raw != "" {
    if end, err = parseDate(raw); err != nil {
      RespondError(c, http.StatusBadRequest, "invalid_end", err)
      return
    }
  }
  stats, err := h.scheduler.GetScheduleStats(c.Request.Context(), userID, start, end)
  if err != nil {
    h.log.Error("GetStats failed", "error", err, "user_id", userID)
    RespondError(c, http.StatusInternalServerError, "load_stats_failed", err)
    return
  }
  RespondOK(c, gin.H{"stats": stats})
}
