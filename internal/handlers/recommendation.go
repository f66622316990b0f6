package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/recommend"
  "github.com/shikshaloop/shikshaloop-backend/internal/requestdata"
)

type RecommendationHandler struct {
  log     *logger.Logger
  planner recommend.Planner
}

func NewRecommendationHandler(baseLog *logger.Logger, planner recommend.Planner) *RecommendationHandler {
  return &RecommendationHandler{
    log:     baseLog.With("handler", "RecommendationHandler"),
    planner: planner,
  }
}

func recommendationIDParam(c *gin.Context) (uuid.UUID, bool) {
  recID, err := uuid.Parse(c.Param("recommendationID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_recommendation_id", err)
    return uuid.Nil, false
  }
  return recID, true
}

// POST /api/recommendations/generate
func (h *RecommendationHandler) Generate(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  recs, err := h.planner.GenerateRecommendations(c.Request.Context(), rd.TeacherID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"recommendations": recs})
}

// GET /api/recommendations
func (h *RecommendationHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  recs, err := h.planner.ListVisible(c.Request.Context(), rd.TeacherID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"recommendations": recs})
}

// POST /api/recommendations/:recommendationID/enroll
func (h *RecommendationHandler) Enroll(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  recID, ok := recommendationIDParam(c)
  if !ok {
    return
  }
  if err := h.planner.Enroll(c.Request.Context(), rd.TeacherID, recID); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "enrolled"})
}

// POST /api/recommendations/:recommendationID/complete
func (h *RecommendationHandler) Complete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  recID, ok := recommendationIDParam(c)
  if !ok {
    return
  }
  if err := h.planner.Complete(c.Request.Context(), rd.TeacherID, recID); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "completed"})
}

// POST /api/recommendations/:recommendationID/dismiss
func (h *RecommendationHandler) Dismiss(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  recID, ok := recommendationIDParam(c)
  if !ok {
    return
  }
  if err := h.planner.Dismiss(c.Request.Context(), rd.TeacherID, recID); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "dismissed"})
}
