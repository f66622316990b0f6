package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/shikshaloop/shikshaloop-backend/internal/handlers"
  "github.com/shikshaloop/shikshaloop-backend/internal/middleware"
)

type RouterConfig struct {
  AuthMiddleware        *middleware.AuthMiddleware
  ProfileHandler        *handlers.ProfileHandler
  AssessmentHandler     *handlers.AssessmentHandler
  PerformanceHandler    *handlers.PerformanceHandler
  RecommendationHandler *handlers.RecommendationHandler
  GrowthPlanHandler     *handlers.GrowthPlanHandler
  AdminHandler          *handlers.AdminHandler
  AllowOrigins          []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  origins := cfg.AllowOrigins
  if len(origins) == 0 {
    origins = []string{"http://localhost:3000", "http://localhost:5173"}
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthcheck", handlers.HealthCheck)

  api := router.Group("/api")
  api.Use(cfg.AuthMiddleware.RequireAuth())
  {
    // Profile
    api.GET("/profile", cfg.ProfileHandler.GetMyProfile)
    api.PUT("/profile", cfg.ProfileHandler.UpsertMyProfile)

    // Assessments
    api.GET("/assessments/overview", cfg.AssessmentHandler.Overview)
    api.GET("/assessments/:moduleID/eligibility", cfg.AssessmentHandler.CheckEligibility)
    api.POST("/assessments/:moduleID/start", cfg.AssessmentHandler.StartSession)
    api.POST("/assessments/:moduleID/submit", cfg.AssessmentHandler.Submit)

    // Performance
    api.GET("/performance/summary", cfg.PerformanceHandler.Summary)
    api.GET("/performance/trends", cfg.PerformanceHandler.Trends)
    api.GET("/performance/priority-areas", cfg.PerformanceHandler.PriorityAreas)

    // Recommendations
    api.GET("/recommendations", cfg.RecommendationHandler.List)
    api.POST("/recommendations/generate", cfg.RecommendationHandler.Generate)
    api.POST("/recommendations/:recommendationID/enroll", cfg.RecommendationHandler.Enroll)
    api.POST("/recommendations/:recommendationID/complete", cfg.RecommendationHandler.Complete)
    api.POST("/recommendations/:recommendationID/dismiss", cfg.RecommendationHandler.Dismiss)

    // Growth plan
    api.GET("/growth-plan", cfg.GrowthPlanHandler.GetActive)
    api.POST("/growth-plan/generate", cfg.GrowthPlanHandler.Generate)
    api.GET("/growth-plan/regeneration-check", cfg.GrowthPlanHandler.CheckRegeneration)
  }

  admin := api.Group("/admin")
  admin.Use(cfg.AuthMiddleware.RequireRole(middleware.RoleAdmin))
  {
    admin.GET("/modules", cfg.AdminHandler.ListModules)
    admin.POST("/modules", cfg.AdminHandler.CreateModule)
  }

  return router
}
