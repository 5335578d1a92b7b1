package handlers

import (
  "errors"
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/services"
  "github.com/yungbote/mindmentor-backend/internal/types"
)

type QuizHandler struct {
  log        *logger.Logger
  contentSvc services.ContentService
}

func NewQuizHandler(log *logger.Logger, contentSvc services.ContentService) *QuizHandler {
  return &QuizHandler{
    log:        log.With("handler", "QuizHandler"),
    contentSvc: contentSvc,
  }
}

type generateQuizRequest struct {
  TopicIDs     []uuid.UUID `json:"topic_ids" binding:"required,min=1"`
  NumQuestions int         `json:"num_questions"`
  Difficulty   string      `json:"difficulty"`
}

// POST /api/quiz/generate
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
  var req generateQuizRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  numQuestions := req.NumQuestions
  if numQuestions <= 0 {
    numQuestions = 5
  }
  difficulty := strings.TrimSpace(req.Difficulty)
  if difficulty == "" {
    difficulty = types.DifficultyMedium
  }
  questions, cached, err := h.contentSvc.GenerateQuiz(c.Request.Context(), req.TopicIDs, numQuestions, difficulty)
  if err != nil {
    if errors.Is(err, services.ErrMalformedContent) {
      RespondError(c, http.StatusBadGateway, "malformed_content", err)
      return
    }
    h.log.Error("GenerateQuiz failed", "error", err, "topic_count", len(req.TopicIDs))
    RespondError(c, http.StatusInternalServerError, "generate_quiz_failed", err)
    return
  }
  RespondOK(c, gin.H{"questions": questions, "cached": cached})
}

type gradeQuizRequest struct {
  UserID    uuid.UUID               `json:"user_id" binding:"required"`
  Questions []services.QuizQuestion `json:"questions" binding:"required,min=1"`
  Answers   map[int]string          `json:"answers" binding:"required"`
}

// POST /api/quiz/grade
// Grades answers against the submitted questions and folds the result
// into each topic's mastery record.
func (h *QuizHandler) GradeQuiz(c *gin.Context) {
  var req gradeQuizRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  result, err := h.contentSvc.GradeQuiz(c.Request.Context(), req.UserID, req.Questions, req.Answers)
  if err != nil {
    h.log.Error("GradeQuiz failed", "error", err, "user_id", req.UserID)
    RespondError(c, http.StatusInternalServerError, "grade_quiz_failed", err)
    return
  }
  RespondOK(c, gin.H{"result": result})
}
