package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

// AdminHandler manages the module catalogue. Runtime writes only add
// modules; existing entries are never mutated through the API.
type AdminHandler struct {
  log        *logger.Logger
  moduleRepo repos.ModuleRepo
}

func NewAdminHandler(baseLog *logger.Logger, moduleRepo repos.ModuleRepo) *AdminHandler {
  return &AdminHandler{
    log:        baseLog.With("handler", "AdminHandler"),
    moduleRepo: moduleRepo,
  }
}

// GET /api/admin/modules
func (h *AdminHandler) ListModules(c *gin.Context) {
  modules, err := h.moduleRepo.List(c.Request.Context(), nil)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"modules": modules})
}

// POST /api/admin/modules
func (h *AdminHandler) CreateModule(c *gin.Context) {
  var module types.Module
  if err := c.ShouldBindJSON(&module); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  if module.Name == "" || module.Category == "" || module.AssessmentType == "" {
    RespondError(c, http.StatusBadRequest, "invalid_body", nil)
    return
  }

  if err := h.moduleRepo.CreateIfMissing(c.Request.Context(), nil, &module); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, module)
}
