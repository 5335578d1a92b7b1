package handlers

import (
  "errors"
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/services"
)

type ContentHandler struct {
  log        *logger.Logger
  contentSvc services.ContentService
}

func NewContentHandler(log *logger.Logger, contentSvc services.ContentService) *ContentHandler {
  return &ContentHandler{
    log:        log.With("handler", "ContentHandler"),
    contentSvc: contentSvc,
  }
}

type generateLessonRequest struct {
  TopicID      uuid.UUID `json:"topic_id" binding:"required"`
  StudentLevel string    `json:"student_level"`
  ForceRefresh bool      `json:"force_refresh"`
}

// POST /api/content/lesson
func (h *ContentHandler) GenerateLesson(c *gin.Context) {
  var req generateLessonRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  level := strings.TrimSpace(req.StudentLevel)
  if level == "" {
    level = "intermediate"
  }
  lesson, cached, err := h.contentSvc.GenerateLesson(c.Request.Context(), req.TopicID, level, req.ForceRefresh)
  if err != nil {
    if errors.Is(err, services.ErrMalformedContent) {
      RespondError(c, http.StatusBadGateway, "malformed_content", err)
      return
    }
    h.log.Error("GenerateLesson failed", "error", err, "topic_id", req.TopicID)
    RespondError(c, http.StatusInternalServerError, "generate_lesson_failed", err)
    return
  }
  RespondOK(c, gin.H{"lesson": lesson, "cached": cached})
}

type explainConceptRequest struct {
  TopicID        uuid.UUID `json:"topic_id" binding:"required"`
  Concept        string    `json:"concept" binding:"required"`
  StudentContext string    `json:"student_context"`
}

// POST /api/content/explain
func (h *ContentHandler) ExplainConcept(c *gin.Context) {
  var req explainConceptRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  explanation, cached, err := h.contentSvc.ExplainConcept(c.Request.Context(), req.TopicID, req.Concept, req.StudentContext)
  if err != nil {
    h.log.Error("ExplainConcept failed", "error", err, "topic_id", req.TopicID)
    RespondError(c, http.StatusInternalServerError, "explain_concept_failed", err)
    return
  }
  RespondOK(c, gin.H{"explanation": explanation, "cached": cached})
}
