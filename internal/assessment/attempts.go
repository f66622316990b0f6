package assessment

import (
  "context"
  "encoding/json"
  "math"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type EligibilityResult struct {
  Eligible       bool        `json:"eligible"`
  Reason         apperr.Kind `json:"reason,omitempty"`
  Message        string      `json:"message,omitempty"`
  AttemptsUsed   int         `json:"attempts_used"`
  MaxAttempts    int         `json:"max_attempts"`
  DaysUntilReset int         `json:"days_until_reset,omitempty"`
  HoursRemaining float64     `json:"hours_remaining,omitempty"`
}

type ModuleOverview struct {
  Module      *types.Module         `json:"module"`
  Eligibility *EligibilityResult    `json:"eligibility"`
  Summary     *types.AttemptSummary `json:"summary,omitempty"`
  Performance *types.Performance    `json:"performance,omitempty"`
}

type QuestionView struct {
  ID      uuid.UUID `json:"id"`
  Prompt  string    `json:"prompt"`
  Options []string  `json:"options"`
}

type StartSessionResult struct {
  SessionID        uuid.UUID      `json:"session_id"`
  AttemptNumber    int            `json:"attempt_number"`
  StartedAt        time.Time      `json:"started_at"`
  ExpiresAt        time.Time      `json:"expires_at"`
  TimeLimitMinutes int            `json:"time_limit_minutes"`
  Questions        []QuestionView `json:"questions"`
}

// AttemptService guards every assessment start: monthly cap, per-module
// cooldown, single active session.
type AttemptService interface {
  Overview(ctx context.Context, teacherID uuid.UUID) ([]*ModuleOverview, error)
  CheckEligibility(ctx context.Context, teacherID uuid.UUID, moduleID int) (*EligibilityResult, error)
  StartSession(ctx context.Context, teacherID uuid.UUID, moduleID int, difficulty string, count int) (*StartSessionResult, error)
}

type attemptService struct {
  db          *gorm.DB
  log         *logger.Logger
  moduleRepo  repos.ModuleRepo
  limitRepo   repos.AttemptLimitRepo
  sessionRepo repos.SessionRepo
  summaryRepo repos.AttemptSummaryRepo
  profileRepo repos.TeacherProfileRepo
  perfRepo    repos.PerformanceRepo
  generator   ItemGenerator

  now func() time.Time
}

func NewAttemptService(
  db *gorm.DB,
  baseLog *logger.Logger,
  moduleRepo repos.ModuleRepo,
  limitRepo repos.AttemptLimitRepo,
  sessionRepo repos.SessionRepo,
  summaryRepo repos.AttemptSummaryRepo,
  profileRepo repos.TeacherProfileRepo,
  perfRepo repos.PerformanceRepo,
  generator ItemGenerator,
) AttemptService {
  return &attemptService{
    db:          db,
    log:         baseLog.With("service", "AttemptController"),
    moduleRepo:  moduleRepo,
    limitRepo:   limitRepo,
    sessionRepo: sessionRepo,
    summaryRepo: summaryRepo,
    profileRepo: profileRepo,
    perfRepo:    perfRepo,
    generator:   generator,
    now:         func() time.Time { return time.Now().UTC() },
  }
}

func yearMonth(t time.Time) string {
  return t.UTC().Format("2006-01")
}

func daysUntilMonthReset(now time.Time) int {
  now = now.UTC()
  firstOfNext := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
  return int(math.Ceil(firstOfNext.Sub(now).Hours() / 24))
}

// checkEligibility runs the veto chain in order: monthly cap first, then
// cooldown. Both vetoes are normal negative results, not errors.
func (s *attemptService) checkEligibility(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, module *types.Module, now time.Time) (*EligibilityResult, *types.AttemptLimit, error) {
  limit, err := s.limitRepo.GetOrCreate(ctx, tx, teacherID, module, yearMonth(now))
  if err != nil {
    return nil, nil, err
  }

  result := &EligibilityResult{
    AttemptsUsed: limit.AttemptsUsed,
    MaxAttempts:  limit.MaxAttempts,
  }

  if limit.AttemptsUsed >= limit.MaxAttempts {
    result.Reason = apperr.KindMonthlyLimitReached
    result.DaysUntilReset = daysUntilMonthReset(now)
    result.Message = "monthly attempt limit reached for this module"
    return result, limit, nil
  }

  if limit.NextAttemptAvailable != nil {
    next := limit.NextAttemptAvailable.UTC()
    if now.Before(next) {
      result.Reason = apperr.KindCooldownPeriod
      result.HoursRemaining = next.Sub(now).Hours()
      result.Message = "cooldown period active for this module"
      return result, limit, nil
    }
  }

  result.Eligible = true
  return result, limit, nil
}

func (s *attemptService) CheckEligibility(ctx context.Context, teacherID uuid.UUID, moduleID int) (*EligibilityResult, error) {
  module, err := s.moduleRepo.GetByID(ctx, nil, moduleID)
  if err != nil {
    return nil, err
  }
  if module == nil {
    return nil, apperr.Newf(apperr.KindModuleNotFound, "module %d does not exist", moduleID)
  }

  result, _, err := s.checkEligibility(ctx, nil, teacherID, module, s.now())
  return result, err
}

func (s *attemptService) Overview(ctx context.Context, teacherID uuid.UUID) ([]*ModuleOverview, error) {
  modules, err := s.moduleRepo.List(ctx, nil)
  if err != nil {
    return nil, err
  }

  now := s.now()
  overviews := make([]*ModuleOverview, 0, len(modules))
  for _, module := range modules {
    eligibility, _, err := s.checkEligibility(ctx, nil, teacherID, module, now)
    if err != nil {
      return nil, err
    }
    summary, err := s.summaryRepo.Get(ctx, nil, teacherID, module.ID)
    if err != nil {
      return nil, err
    }
    performance, err := s.perfRepo.Get(ctx, nil, teacherID, module.ID)
    if err != nil {
      return nil, err
    }
    overviews = append(overviews, &ModuleOverview{
      Module:      module,
      Eligibility: eligibility,
      Summary:     summary,
      Performance: performance,
    })
  }
  return overviews, nil
}

// StartSession re-checks eligibility, deactivates any prior active
// session, generates and snapshots the questions, and records the attempt
// against the monthly limit. All of it commits in one transaction so no
// orphan question rows can be referenced by the returned ids.
func (s *attemptService) StartSession(ctx context.Context, teacherID uuid.UUID, moduleID int, difficulty string, count int) (*StartSessionResult, error) {
  module, err := s.moduleRepo.GetByID(ctx, nil, moduleID)
  if err != nil {
    return nil, err
  }
  if module == nil {
    return nil, apperr.Newf(apperr.KindModuleNotFound, "module %d does not exist", moduleID)
  }
  if module.AssessmentType != types.AssessmentTypeMCQ {
    return nil, apperr.Newf(apperr.KindModuleTypeMismatch, "module %q is not MCQ-assessed", module.Name)
  }

  profile, err := s.profileRepo.GetByTeacherID(ctx, nil, teacherID)
  if err != nil {
    return nil, err
  }
  if profile == nil {
    return nil, apperr.New(apperr.KindProfileMissing, "complete your teacher profile before starting an assessment")
  }

  now := s.now()
  var result *StartSessionResult

  txErr := s.db.Transaction(func(tx *gorm.DB) error {
    eligibility, limit, err := s.checkEligibility(ctx, tx, teacherID, module, now)
    if err != nil {
      return err
    }
    if !eligibility.Eligible {
      vetoErr := apperr.New(eligibility.Reason, eligibility.Message)
      vetoErr.DaysUntilReset = eligibility.DaysUntilReset
      vetoErr.HoursRemaining = eligibility.HoursRemaining
      vetoErr.AttemptsRemaining = eligibility.MaxAttempts - eligibility.AttemptsUsed
      return vetoErr
    }

    summary, err := s.summaryRepo.Get(ctx, tx, teacherID, module.ID)
    if err != nil {
      return err
    }
    attemptNumber := 1
    if summary != nil {
      attemptNumber = summary.TotalAttempts + 1
    }

    if err := s.sessionRepo.DeactivateActive(ctx, tx, teacherID, module.ID); err != nil {
      return err
    }

    questions, err := s.generator.GenerateQuestions(ctx, tx, profile, module, count, difficulty)
    if err != nil {
      return err
    }

    views := make([]QuestionView, 0, len(questions))
    for _, q := range questions {
      var options []string
      if err := json.Unmarshal(q.Options, &options); err != nil {
        return err
      }
      views = append(views, QuestionView{ID: q.ID, Prompt: q.Prompt, Options: options})
    }
    snapshot, err := json.Marshal(views)
    if err != nil {
      return err
    }

    expiresAt := now.Add(time.Duration(module.TimeLimitMinutes) * time.Minute)
    session := &types.AssessmentSession{
      ID:            uuid.New(),
      TeacherID:     teacherID,
      ModuleID:      module.ID,
      AttemptNumber: attemptNumber,
      StartedAt:     now,
      ExpiresAt:     expiresAt,
      IsActive:      true,
      Questions:     datatypes.JSON(snapshot),
    }
    if _, err := s.sessionRepo.Create(ctx, tx, session); err != nil {
      return err
    }

    if err := s.limitRepo.RecordAttempt(ctx, tx, limit, now); err != nil {
      return err
    }

    result = &StartSessionResult{
      SessionID:        session.ID,
      AttemptNumber:    attemptNumber,
      StartedAt:        now,
      ExpiresAt:        expiresAt,
      TimeLimitMinutes: module.TimeLimitMinutes,
      Questions:        views,
    }
    return nil
  })
  if txErr != nil {
    return nil, txErr
  }
  return result, nil
}
