package repos

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type AttemptSummaryRepo interface {
  Get(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int) (*types.AttemptSummary, error)
  Upsert(ctx context.Context, tx *gorm.DB, summary *types.AttemptSummary) error
}

type attemptSummaryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAttemptSummaryRepo(db *gorm.DB, baseLog *logger.Logger) AttemptSummaryRepo {
  repoLog := baseLog.With("repo", "AttemptSummaryRepo")
  return &attemptSummaryRepo{db: db, log: repoLog}
}

func (r *attemptSummaryRepo) Get(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int) (*types.AttemptSummary, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.AttemptSummary
  err := transaction.WithContext(ctx).
    Where("teacher_id = ? AND module_id = ?", teacherID, moduleID).
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *attemptSummaryRepo) Upsert(ctx context.Context, tx *gorm.DB, summary *types.AttemptSummary) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).Save(summary).Error
}
