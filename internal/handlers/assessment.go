package handlers

import (
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"

  "github.com/shikshaloop/shikshaloop-backend/internal/assessment"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/requestdata"
)

type AssessmentHandler struct {
  log        *logger.Logger
  attemptSvc assessment.AttemptService
  scorer     assessment.Scorer
}

func NewAssessmentHandler(baseLog *logger.Logger, attemptSvc assessment.AttemptService, scorer assessment.Scorer) *AssessmentHandler {
  return &AssessmentHandler{
    log:        baseLog.With("handler", "AssessmentHandler"),
    attemptSvc: attemptSvc,
    scorer:     scorer,
  }
}

func moduleIDParam(c *gin.Context) (int, bool) {
  moduleID, err := strconv.Atoi(c.Param("moduleID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_module_id", err)
    return 0, false
  }
  return moduleID, true
}

// GET /api/assessments/overview
func (h *AssessmentHandler) Overview(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  overviews, err := h.attemptSvc.Overview(c.Request.Context(), rd.TeacherID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"modules": overviews})
}

// GET /api/assessments/:moduleID/eligibility
func (h *AssessmentHandler) CheckEligibility(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  moduleID, ok := moduleIDParam(c)
  if !ok {
    return
  }

  result, err := h.attemptSvc.CheckEligibility(c.Request.Context(), rd.TeacherID, moduleID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, result)
}

type startSessionBody struct {
  Difficulty    string `json:"difficulty"`
  QuestionCount int    `json:"question_count"`
}

// POST /api/assessments/:moduleID/start
func (h *AssessmentHandler) StartSession(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  moduleID, ok := moduleIDParam(c)
  if !ok {
    return
  }

  body := startSessionBody{Difficulty: "medium", QuestionCount: 10}
  if c.Request.ContentLength > 0 {
    if err := c.ShouldBindJSON(&body); err != nil {
      RespondError(c, http.StatusBadRequest, "invalid_body", err)
      return
    }
  }

  result, err := h.attemptSvc.StartSession(c.Request.Context(), rd.TeacherID, moduleID, body.Difficulty, body.QuestionCount)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, result)
}

type submitBody struct {
  Answers []assessment.SubmittedAnswer `json:"answers"`
}

// POST /api/assessments/:moduleID/submit
func (h *AssessmentHandler) Submit(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  moduleID, ok := moduleIDParam(c)
  if !ok {
    return
  }

  var body submitBody
  if err := c.ShouldBindJSON(&body); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }

  result, err := h.scorer.Submit(c.Request.Context(), rd.TeacherID, moduleID, body.Answers)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, result)
}
