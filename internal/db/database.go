package db

import (
  "fmt"
  "strings"
  "gorm.io/driver/postgres"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/types"
  "github.com/yungbote/mindmentor-backend/internal/utils"
)

type DatabaseService struct {
  db  *gorm.DB
  log *logger.Logger
}

// NewDatabaseService opens the configured database. DB_DRIVER selects
// postgres (default) or sqlite; sqlite keeps local development and CI free
// of external infrastructure.
func NewDatabaseService(log *logger.Logger) (*DatabaseService, error) {
  serviceLog := log.With("service", "DatabaseService")

  driver := strings.ToLower(utils.GetEnv("DB_DRIVER", "postgres", log))

  var (
    gormDB *gorm.DB
    err    error
  )
  switch driver {
  case "sqlite":
    path := utils.GetEnv("SQLITE_PATH", "mindmentor.db", log)
    serviceLog.Info("Connecting to SQLite...", "path", path)
    gormDB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
  case "postgres":
    host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
    port := utils.GetEnv("POSTGRES_PORT", "5432", log)
    user := utils.GetEnv("POSTGRES_USER", "postgres", log)
    password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
    name := utils.GetEnv("POSTGRES_NAME", "mindmentor", log)
    dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
    serviceLog.Info("Connecting to Postgres...", "host", host, "database", name)
    gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
      DisableForeignKeyConstraintWhenMigrating: true,
    })
  default:
    return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
  }
  if err != nil {
    serviceLog.Error("Failed to connect to database", "driver", driver, "error", err)
    return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
  }

  return &DatabaseService{db: gormDB, log: serviceLog}, nil
}

func (s *DatabaseService) DB() *gorm.DB {
  return s.db
}

func (s *DatabaseService) AutoMigrateAll() error {
  s.log.Info("Auto migrating tables...")
  if err := s.db.AutoMigrate(
    &types.User{},
    &types.Topic{},
    &types.StudentProfile{},
    &types.StudySchedule{},
    &types.LLMCacheEntry{},
  ); err != nil {
    s.log.Error("Auto migration failed", "error", err)
    return err
  }
  return nil
}
