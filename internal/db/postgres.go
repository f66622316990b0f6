package db

import (
  "fmt"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
  "github.com/shikshaloop/shikshaloop-backend/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "shikshaloop", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
  }

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.TeacherProfile{},
    &types.Module{},
    &types.AssessmentQuestion{},
    &types.AssessmentResponse{},
    &types.AttemptLimit{},
    &types.AssessmentSession{},
    &types.AttemptSummary{},
    &types.Performance{},
    &types.PerformanceHistory{},
    &types.Course{},
    &types.Recommendation{},
    &types.GrowthPlan{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}

// NewCurriculumConnection opens the external read-only curriculum store.
// The core never migrates or writes through this handle.
func NewCurriculumConnection(log *logger.Logger) (*gorm.DB, error) {
  host := utils.GetEnv("CURRICULUM_POSTGRES_HOST", "localhost", log)
  port := utils.GetEnv("CURRICULUM_POSTGRES_PORT", "5432", log)
  user := utils.GetEnv("CURRICULUM_POSTGRES_USER", "postgres", log)
  password := utils.GetEnv("CURRICULUM_POSTGRES_PASSWORD", "", log)
  name := utils.GetEnv("CURRICULUM_POSTGRES_NAME", "curriculum", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

  log.Info("Connecting to curriculum store...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
  if err != nil {
    log.Error("Failed to connect to curriculum store", "error", err)
    return nil, fmt.Errorf("Failed to connect to curriculum store: %w", err)
  }
  return db, nil
}
