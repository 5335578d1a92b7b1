package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
  "github.com/yungbote/mindmentor-backend/internal/handlers"
  "github.com/yungbote/mindmentor-backend/internal/middleware"
)

type RouterConfig struct {
  RequestLogger    *middleware.RequestLogger
  UserHandler      *handlers.UserHandler
  TopicHandler     *handlers.TopicHandler
  ScheduleHandler  *handlers.ScheduleHandler
  ContentHandler   *handlers.ContentHandler
  QuizHandler      *handlers.QuizHandler
  AnalyticsHandler *handlers.AnalyticsHandler
  CacheHandler     *handlers.CacheHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.New()
  router.Use(gin.Recovery())
  router.Use(otelgin.Middleware("mindmentor"))
  if cfg.RequestLogger != nil {
    router.Use(cfg.RequestLogger.Log())
  }

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthcheck", handlers.HealthCheck)

  api := router.Group("/api")
  {
    // Users
    api.POST("/users", cfg.UserHandler.CreateUser)
    api.GET("/users/:id", cfg.UserHandler.GetUser)
    // Topics
    api.POST("/topics", cfg.TopicHandler.CreateTopics)
    api.GET("/topics", cfg.TopicHandler.ListTopics)
    api.GET("/topics/:id", cfg.TopicHandler.GetTopic)
    // Schedule
    api.POST("/schedule/generate", cfg.ScheduleHandler.GenerateSchedule)
    api.POST("/schedule/save", cfg.ScheduleHandler.SaveSchedule)
    api.POST("/schedule/complete", cfg.ScheduleHandler.CompleteItem)
    api.GET("/schedule/stats", cfg.ScheduleHandler.GetStats)
    // Content
    api.POST("/content/lesson", cfg.ContentHandler.GenerateLesson)
    api.POST("/content/explain", cfg.ContentHandler.ExplainConcept)
    // Quiz
    api.POST("/quiz/generate", cfg.QuizHandler.GenerateQuiz)
    api.POST("/quiz/grade", cfg.QuizHandler.GradeQuiz)
    // Analytics
    api.GET("/analytics/summary", cfg.AnalyticsHandler.GetOverview)
    // Cache
    api.GET("/cache/stats", cfg.CacheHandler.GetStats)
    api.POST("/cache/clear", cfg.CacheHandler.ClearOldEntries)
  }

  return router
}
