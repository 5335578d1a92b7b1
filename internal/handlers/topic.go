package handlers

import (
  "errors"
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/repos"
  "github.com/yungbote/mindmentor-backend/internal/types"
)

type TopicHandler struct {
  log       *logger.Logger
  topicRepo repos.TopicRepo
}

func NewTopicHandler(log *logger.Logger, topicRepo repos.TopicRepo) *TopicHandler {
  return &TopicHandler{
    log:       log.With("handler", "TopicHandler"),
    topicRepo: topicRepo,
  }
}

type createTopicRequest struct {
  Subject         string  `json:"subject" binding:"required"`
  ChapterName     string  `json:"chapter_name" binding:"required"`
  TopicName       string  `json:"topic_name" binding:"required"`
  ExamWeight      float64 `json:"exam_weight"`
  DifficultyLevel string  `json:"difficulty_level"`
}

type createTopicsRequest struct {
  Topics []createTopicRequest `json:"topics" binding:"required,min=1,dive"`
}

// POST /api/topics
// Bulk-loads syllabus topics. Accepts one or many in a single call.
func (h *TopicHandler) CreateTopics(c *gin.Context) {
  var req createTopicsRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  rows := make([]*types.Topic, 0, len(req.Topics))
  for _, t := range req.Topics {
    difficulty := strings.TrimSpace(t.DifficultyLevel)
    if difficulty == "" {
      difficulty = types.DifficultyMedium
    }
    rows = append(rows, &types.Topic{
      Subject:         strings.TrimSpace(t.Subject),
      ChapterName:     strings.TrimSpace(t.ChapterName),
      TopicName:       strings.TrimSpace(t.TopicName),
      ExamWeight:      t.ExamWeight,
      DifficultyLevel: difficulty,
    })
  }
  created, err := h.topicRepo.Create(c.Request.Context(), nil, rows)
  if err != nil {
    h.log.Error("CreateTopics failed", "error", err, "count", len(rows))
    RespondError(c, http.StatusInternalServerError, "create_topics_failed", err)
    return
  }
  RespondOK(c, gin.H{"topics": created})
}

// GET /api/topics?subject=Physics
func (h *TopicHandler) ListTopics(c *gin.Context) {
  subject := strings.TrimSpace(c.Query("subject"))
  topics, err := h.topicRepo.GetAll(c.Request.Context(), nil, subject)
  if err != nil {
    h.log.Error("ListTopics failed", "error", err, "subject", subject)
    RespondError(c, http.StatusInternalServerError, "load_topics_failed", err)
    return
  }
  if topics == nil {
    topics = []*types.Topic{}
  }
  RespondOK(c, gin.H{"topics": topics})
}

// GET /api/topics/:id
func (h *TopicHandler) GetTopic(c *gin.Context) {
  id, err := parseUUIDParam(c, "id")
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_topic_id", err)
    return
  }
  topic, err := h.topicRepo.GetByID(c.Request.Context(), nil, id)
  if err != nil {
    h.log.Error("GetTopic failed", "error", err, "topic_id", id)
    RespondError(c, http.StatusInternalServerError, "load_topic_failed", err)
    return
  }
  if topic == nil {
    RespondError(c, http.StatusNotFound, "topic_not_found", errors.New("topic not found"))
    return
  }
  RespondOK(c, gin.H{"topic": topic})
}
