package repos

import (
  "context"

  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type ResponseRepo interface {
  Create(ctx context.Context, tx *gorm.DB, responses []*types.AssessmentResponse) error
}

type responseRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
  repoLog := baseLog.With("repo", "ResponseRepo")
  return &responseRepo{db: db, log: repoLog}
}

func (r *responseRepo) Create(ctx context.Context, tx *gorm.DB, responses []*types.AssessmentResponse) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(responses) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).Create(&responses).Error
}
