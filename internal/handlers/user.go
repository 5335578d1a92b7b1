package handlers

import (
  "errors"
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/repos"
  "github.com/yungbote/mindmentor-backend/internal/types"
)

type UserHandler struct {
  log      *logger.Logger
  userRepo repos.UserRepo
}

func NewUserHandler(log *logger.Logger, userRepo repos.UserRepo) *UserHandler {
  return &UserHandler{
    log:      log.With("handler", "UserHandler"),
    userRepo: userRepo,
  }
}

type createUserRequest struct {
  Email      string  `json:"email" binding:"required,email"`
  Name       string  `json:"name" binding:"required"`
  ExamTarget string  `json:"exam_target"`
  DailyHours float64 `json:"daily_hours"`
}

// POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
  var req createUserRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  if req.DailyHours < 0 {
    RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("daily_hours must be non-negative"))
    return
  }
  row := &types.User{
    Email:      strings.TrimSpace(strings.ToLower(req.Email)),
    Name:       strings.TrimSpace(req.Name),
    ExamTarget: strings.TrimSpace(req.ExamTarget),
    DailyHours: req.DailyHours,
  }
  created, err := h.userRepo.Create(c.Request.Context(), nil, row)
  if err != nil {
    h.log.Error("CreateUser failed", "error", err, "email", row.Email)
    RespondError(c, http.StatusInternalServerError, "create_user_failed", err)
    return
  }
  RespondOK(c, gin.H{"user": created})
}

// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
    return
  }
  user, err := h.userRepo.GetByID(c.Request.Context(), nil, id)
  if err != nil {
    h.log.Error("GetUser failed", "error", err, "user_id", id)
    RespondError(c, http.StatusInternalServerError, "load_user_failed", err)
    return
  }
  if user == nil {
    RespondError(c, http.StatusNotFound, "user_not_found", errors.New("user not found"))
    return
  }
  RespondOK(c, gin.H{"user": user})
}
