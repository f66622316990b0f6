package handlers

import (
  "strconv"

  "github.com/gin-gonic/gin"

  "github.com/shikshaloop/shikshaloop-backend/internal/analysis"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/requestdata"
)

type PerformanceHandler struct {
  log      *logger.Logger
  analyser analysis.Service
}

func NewPerformanceHandler(baseLog *logger.Logger, analyser analysis.Service) *PerformanceHandler {
  return &PerformanceHandler{
    log:      baseLog.With("handler", "PerformanceHandler"),
    analyser: analyser,
  }
}

// GET /api/performance/summary
func (h *PerformanceHandler) Summary(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  summary, err := h.analyser.Summary(c.Request.Context(), rd.TeacherID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, summary)
}

// GET /api/performance/trends
func (h *PerformanceHandler) Trends(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  trends, err := h.analyser.ModuleTrends(c.Request.Context(), rd.TeacherID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"trends": trends})
}

// GET /api/performance/priority-areas?max=3
func (h *PerformanceHandler) PriorityAreas(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())

  max := 3
  if raw := c.Query("max"); raw != "" {
    if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
      max = parsed
    }
  }

  areas, err := h.analyser.PriorityAreas(c.Request.Context(), rd.TeacherID, max)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"priority_areas": areas})
}
