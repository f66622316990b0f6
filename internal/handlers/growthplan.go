package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/shikshaloop/shikshaloop-backend/internal/growthplan"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/requestdata"
)

type GrowthPlanHandler struct {
  log     *logger.Logger
  planSvc growthplan.Generator
}

func NewGrowthPlanHandler(baseLog *logger.Logger, planSvc growthplan.Generator) *GrowthPlanHandler {
  return &GrowthPlanHandler{
    log:     baseLog.With("handler", "GrowthPlanHandler"),
    planSvc: planSvc,
  }
}

type generatePlanBody struct {
  FocusAreas []string `json:"focus_areas"`
}

// POST /api/growth-plan/generate
func (h *GrowthPlanHandler) Generate(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())

  var body generatePlanBody
  if c.Request.ContentLength > 0 {
    if err := c.ShouldBindJSON(&body); err != nil {
      RespondError(c, http.StatusBadRequest, "invalid_body", err)
      return
    }
  }

  plan, err := h.planSvc.Generate(c.Request.Context(), rd.TeacherID, body.FocusAreas)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, plan)
}

// GET /api/growth-plan
func (h *GrowthPlanHandler) GetActive(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  plan, err := h.planSvc.GetActive(c.Request.Context(), rd.TeacherID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  if plan == nil {
    RespondError(c, http.StatusNotFound, "no_active_plan", nil)
    return
  }
  RespondOK(c, plan)
}

// GET /api/growth-plan/regeneration-check
func (h *GrowthPlanHandler) CheckRegeneration(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  check, err := h.planSvc.CheckRegeneration(c.Request.Context(), rd.TeacherID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, check)
}
