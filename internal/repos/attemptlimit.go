package repos

import (
  "context"
  "errors"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type AttemptLimitRepo interface {
  GetOrCreate(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, module *types.Module, yearMonth string) (*types.AttemptLimit, error)
  RecordAttempt(ctx context.Context, tx *gorm.DB, limit *types.AttemptLimit, at time.Time) error
}

type attemptLimitRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAttemptLimitRepo(db *gorm.DB, baseLog *logger.Logger) AttemptLimitRepo {
  repoLog := baseLog.With("repo", "AttemptLimitRepo")
  return &attemptLimitRepo{db: db, log: repoLog}
}

// GetOrCreate auto-creates the (teacher, module, year-month) record with
// the module defaults on first access.
func (r *attemptLimitRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, module *types.Module, yearMonth string) (*types.AttemptLimit, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.AttemptLimit
  err := transaction.WithContext(ctx).
    Where("teacher_id = ? AND module_id = ? AND year_month = ?", teacherID, module.ID, yearMonth).
    First(&result).Error
  if err == nil {
    return &result, nil
  }
  if !errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, err
  }

  result = types.AttemptLimit{
    ID:            uuid.New(),
    TeacherID:     teacherID,
    ModuleID:      module.ID,
    YearMonth:     yearMonth,
    AttemptsUsed:  0,
    MaxAttempts:   module.MaxAttemptsPerMonth,
    CooldownHours: module.CooldownHours,
  }
  if err := transaction.WithContext(ctx).Create(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

// RecordAttempt bumps attempts-used and re-anchors the cooldown window.
// next-attempt-available is always last-attempt-at + cooldown-hours.
func (r *attemptLimitRepo) RecordAttempt(ctx context.Context, tx *gorm.DB, limit *types.AttemptLimit, at time.Time) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  next := at.Add(time.Duration(limit.CooldownHours) * time.Hour)
  limit.AttemptsUsed++
  limit.LastAttemptAt = &at
  limit.NextAttemptAvailable = &next

  return transaction.WithContext(ctx).
    Model(&types.AttemptLimit{}).
    Where("id = ?", limit.ID).
    Updates(map[string]interface{}{
      "attempts_used":          limit.AttemptsUsed,
      "last_attempt_at":        at,
      "next_attempt_available": next,
    }).Error
}
