package main

import (
  "context"
  "fmt"
  "os"
  "strings"

  "github.com/joho/godotenv"
  "github.com/redis/go-redis/v9"

  "github.com/shikshaloop/shikshaloop-backend/internal/analysis"
  "github.com/shikshaloop/shikshaloop-backend/internal/assessment"
  "github.com/shikshaloop/shikshaloop-backend/internal/curriculum"
  "github.com/shikshaloop/shikshaloop-backend/internal/db"
  "github.com/shikshaloop/shikshaloop-backend/internal/growthplan"
  "github.com/shikshaloop/shikshaloop-backend/internal/handlers"
  "github.com/shikshaloop/shikshaloop-backend/internal/llm"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/middleware"
  "github.com/shikshaloop/shikshaloop-backend/internal/profile"
  "github.com/shikshaloop/shikshaloop-backend/internal/recommend"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/seed"
  "github.com/shikshaloop/shikshaloop-backend/internal/server"
  "github.com/shikshaloop/shikshaloop-backend/internal/utils"
)

func main() {
  _ = godotenv.Load()

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

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err := postgresService.AutoMigrateAll(); err != nil {
    log.Error("Postgres auto migration failed", "error", err)
    os.Exit(1)
  }
  thePG := postgresService.DB()

  // Module catalogue
  cataloguePath := utils.GetEnv("MODULE_CATALOGUE_PATH", "configs/modules.yaml", log)
  if err := seed.Modules(context.Background(), thePG, log, cataloguePath); err != nil {
    log.Error("Module catalogue seed failed", "error", err)
    os.Exit(1)
  }

  // Curriculum store (separate read-only database)
  curriculumDB, err := db.NewCurriculumConnection(log)
  if err != nil {
    log.Error("Curriculum database init failed", "error", err)
    os.Exit(1)
  }
  curriculumStore := curriculum.NewStore(curriculumDB, log)

  // Redis (optional, cohort benchmark cache)
  var cache *redis.Client
  redisAddr := utils.GetEnv("REDIS_ADDR", "", log)
  if redisAddr != "" {
    cache = redis.NewClient(&redis.Options{
      Addr:     redisAddr,
      Password: utils.GetEnv("REDIS_PASSWORD", "", log),
    })
    if err := cache.Ping(context.Background()).Err(); err != nil {
      log.Warn("Redis unavailable, cohort cache disabled", "error", err)
      cache = nil
    }
  }

  // Repos
  log.Info("Setting up Repos from main...")
  profileRepo := repos.NewTeacherProfileRepo(thePG, log)
  moduleRepo := repos.NewModuleRepo(thePG, log)
  questionRepo := repos.NewQuestionRepo(thePG, log)
  responseRepo := repos.NewResponseRepo(thePG, log)
  limitRepo := repos.NewAttemptLimitRepo(thePG, log)
  sessionRepo := repos.NewSessionRepo(thePG, log)
  summaryRepo := repos.NewAttemptSummaryRepo(thePG, log)
  perfRepo := repos.NewPerformanceRepo(thePG, log)
  historyRepo := repos.NewPerformanceHistoryRepo(thePG, log)
  courseRepo := repos.NewCourseRepo(thePG, log)
  recRepo := repos.NewRecommendationRepo(thePG, log)
  planRepo := repos.NewGrowthPlanRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  llmClient, err := llm.NewClient(log)
  if err != nil {
    log.Error("Could not init LLM client", "error", err)
    os.Exit(1)
  }
  profileService := profile.NewService(thePG, log, profileRepo)
  itemGenerator := assessment.NewGeneratorService(thePG, log, llmClient, curriculumStore, questionRepo)
  attemptService := assessment.NewAttemptService(thePG, log, moduleRepo, limitRepo, sessionRepo, summaryRepo, profileRepo, perfRepo, itemGenerator)
  scorer := assessment.NewScorer(thePG, log, moduleRepo, questionRepo, responseRepo, sessionRepo, perfRepo, historyRepo, summaryRepo)
  analyser := analysis.NewService(thePG, log, cache, perfRepo, historyRepo, profileRepo, moduleRepo)
  planner := recommend.NewPlanner(thePG, log, llmClient, analyser, profileRepo, courseRepo, recRepo)
  planGenerator := growthplan.NewGenerator(thePG, log, llmClient, analyser, profileRepo, planRepo, historyRepo)

  // Handlers
  log.Info("Setting up handlers from main...")
  profileHandler := handlers.NewProfileHandler(log, profileService)
  assessmentHandler := handlers.NewAssessmentHandler(log, attemptService, scorer)
  performanceHandler := handlers.NewPerformanceHandler(log, analyser)
  recommendationHandler := handlers.NewRecommendationHandler(log, planner)
  growthPlanHandler := handlers.NewGrowthPlanHandler(log, planGenerator)
  adminHandler := handlers.NewAdminHandler(log, moduleRepo)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log)

  // Router
  log.Info("Setting up router from main...")
  var origins []string
  if raw := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log); raw != "" {
    origins = strings.Split(raw, ",")
  }
  router := server.NewRouter(server.RouterConfig{
    AuthMiddleware:        authMiddleware,
    ProfileHandler:        profileHandler,
    AssessmentHandler:     assessmentHandler,
    PerformanceHandler:    performanceHandler,
    RecommendationHandler: recommendationHandler,
    GrowthPlanHandler:     growthPlanHandler,
    AdminHandler:          adminHandler,
    AllowOrigins:          origins,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
