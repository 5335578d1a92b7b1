package main

import (
  "context"
  "fmt"
  "os"
  "time"
  "github.com/yungbote/mindmentor-backend/internal/db"
  "github.com/yungbote/mindmentor-backend/internal/handlers"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/middleware"
  "github.com/yungbote/mindmentor-backend/internal/observability"
  "github.com/yungbote/mindmentor-backend/internal/repos"
  "github.com/yungbote/mindmentor-backend/internal/server"
  "github.com/yungbote/mindmentor-backend/internal/services"
  "github.com/yungbote/mindmentor-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Tracing
  shutdownTracing := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "mindmentor",
    Environment: utils.GetEnv("APP_ENV", "development", log),
    Version:     utils.GetEnv("APP_VERSION", "dev", log),
  })
  if shutdownTracing != nil {
    defer func() {
      ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      _ = shutdownTracing(ctx)
    }()
  }

  // Env
  log.Info("Loading environment variables from main...")
  cacheEnabled := utils.GetEnvAsBool("ENABLE_LLM_CACHE", true, log)
  cacheTTLDays := utils.GetEnvAsInt("CACHE_TTL_DAYS", 7, log)

  // Database
  dbService, err := db.NewDatabaseService(log)
  if err != nil {
    log.Error("Database init failed", "error", err)
    os.Exit(1)
  }
  if err = dbService.AutoMigrateAll(); err != nil {
    log.Warn("Auto migration failed", "error", err)
  }
  theDB := dbService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(theDB, log)
  topicRepo := repos.NewTopicRepo(theDB, log)
  profileRepo := repos.NewStudentProfileRepo(theDB, log)
  scheduleRepo := repos.NewStudyScheduleRepo(theDB, log)
  cacheRepo := repos.NewLLMCacheRepo(theDB, log)

  // Services
  log.Info("Setting up Services from main...")
  geminiClient, err := services.NewGeminiClient(log)
  if err != nil {
    log.Error("Could not init GeminiClient", "error", err)
    os.Exit(1)
  }
  cacheService := services.NewCacheService(log, cacheRepo, services.CacheConfig{
    Enabled: cacheEnabled,
    TTLDays: cacheTTLDays,
  })
  schedulerService := services.NewSchedulerService(theDB, log, userRepo, topicRepo, profileRepo, scheduleRepo)
  contentService := services.NewContentService(log, cacheService, geminiClient, topicRepo, profileRepo)
  analyticsService := services.NewAnalyticsService(log, profileRepo, schedulerService)

  // Handlers
  log.Info("Setting up handlers from main...")
  userHandler := handlers.NewUserHandler(log, userRepo)
  topicHandler := handlers.NewTopicHandler(log, topicRepo)
  scheduleHandler := handlers.NewScheduleHandler(log, schedulerService)
  contentHandler := handlers.NewContentHandler(log, contentService)
  quizHandler := handlers.NewQuizHandler(log, contentService)
  analyticsHandler := handlers.NewAnalyticsHandler(log, analyticsService)
  cacheHandler := handlers.NewCacheHandler(log, cacheService)

  // Middleware
  log.Info("Setting up middleware from main...")
  requestLogger := middleware.NewRequestLogger(log)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    RequestLogger:    requestLogger,
    UserHandler:      userHandler,
    TopicHandler:     topicHandler,
    ScheduleHandler:  scheduleHandler,
    ContentHandler:   contentHandler,
    QuizHandler:      quizHandler,
    AnalyticsHandler: analyticsHandler,
    CacheHandler:     cacheHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
