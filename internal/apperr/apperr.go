package apperr

import (
  "errors"
  "fmt"
)

// Kind is the stable machine-readable code attached to every negative
// outcome the core surfaces. Handlers map kinds to HTTP statuses; callers
// switch on kinds to pick their fallback path.
type Kind string

const (
  KindProfileMissing       Kind = "profile_missing"
  KindModuleNotFound       Kind = "module_not_found"
  KindModuleTypeMismatch   Kind = "module_type_mismatch"
  KindMonthlyLimitReached  Kind = "monthly_limit_reached"
  KindCooldownPeriod       Kind = "cooldown_period"
  KindInvalidQuestionIDs   Kind = "invalid_question_ids"
  KindRateLimitedExhausted Kind = "rate_limited_exhausted"
  KindTimeout              Kind = "timeout"
  KindInvalidModelOutput   Kind = "invalid_model_output"
  KindUpstreamError        Kind = "upstream_error"
  KindGenerationShortfall  Kind = "generation_shortfall"
  KindSessionExpired       Kind = "session_expired"
)

type Error struct {
  Kind    Kind
  Message string

  // Optional remaining-window payloads, set where the kind calls for them.
  DaysUntilReset    int
  HoursRemaining    float64
  AttemptsRemaining int

  wrapped error
}

func (e *Error) Error() string {
  if e.wrapped != nil {
    return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.wrapped)
  }
  return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
  return e.wrapped
}

func New(kind Kind, msg string) *Error {
  return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
  return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
  return &Error{Kind: kind, Message: msg, wrapped: err}
}

// KindOf extracts the kind from an error chain, or "" when the error does
// not carry one.
func KindOf(err error) Kind {
  var ae *Error
  if errors.As(err, &ae) {
    return ae.Kind
  }
  return ""
}

func IsKind(err error, kind Kind) bool {
  return KindOf(err) == kind
}
