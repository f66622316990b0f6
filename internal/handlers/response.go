package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
)

type APIError struct {
  Message           string  `json:"message"`
  Code              string  `json:"code,omitempty"`
  DaysUntilReset    int     `json:"days_until_reset,omitempty"`
  HoursRemaining    float64 `json:"hours_remaining,omitempty"`
  AttemptsRemaining int     `json:"attempts_remaining,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

var kindStatuses = map[apperr.Kind]int{
  apperr.KindProfileMissing:       http.StatusPreconditionFailed,
  apperr.KindModuleNotFound:       http.StatusNotFound,
  apperr.KindModuleTypeMismatch:   http.StatusUnprocessableEntity,
  apperr.KindMonthlyLimitReached:  http.StatusTooManyRequests,
  apperr.KindCooldownPeriod:       http.StatusTooManyRequests,
  apperr.KindInvalidQuestionIDs:   http.StatusBadRequest,
  apperr.KindRateLimitedExhausted: http.StatusBadGateway,
  apperr.KindTimeout:              http.StatusGatewayTimeout,
  apperr.KindInvalidModelOutput:   http.StatusBadGateway,
  apperr.KindUpstreamError:        http.StatusBadGateway,
  apperr.KindGenerationShortfall:  http.StatusBadGateway,
  apperr.KindSessionExpired:       http.StatusGone,
}

// RespondAppError maps domain error kinds to HTTP statuses; everything
// without a kind is a 500.
func RespondAppError(c *gin.Context, err error) {
  kind := apperr.KindOf(err)
  status, ok := kindStatuses[kind]
  if !ok {
    RespondError(c, http.StatusInternalServerError, "internal_error", err)
    return
  }

  body := APIError{Message: err.Error(), Code: string(kind)}
  var ae *apperr.Error
  if errors.As(err, &ae) {
    body.Message = ae.Message
    body.DaysUntilReset = ae.DaysUntilReset
    body.HoursRemaining = ae.HoursRemaining
    body.AttemptsRemaining = ae.AttemptsRemaining
  }
  c.JSON(status, ErrorEnvelope{Error: body})
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}
