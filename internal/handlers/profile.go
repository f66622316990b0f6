package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/profile"
  "github.com/shikshaloop/shikshaloop-backend/internal/requestdata"
)

type ProfileHandler struct {
  log        *logger.Logger
  profileSvc profile.Service
}

func NewProfileHandler(baseLog *logger.Logger, profileSvc profile.Service) *ProfileHandler {
  return &ProfileHandler{
    log:        baseLog.With("handler", "ProfileHandler"),
    profileSvc: profileSvc,
  }
}

// GET /api/profile
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  result, err := h.profileSvc.Get(c.Request.Context(), rd.TeacherID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, result)
}

// PUT /api/profile
func (h *ProfileHandler) UpsertMyProfile(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())

  var input profile.Input
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }

  result, err := h.profileSvc.Upsert(c.Request.Context(), rd.TeacherID, input)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, result)
}
