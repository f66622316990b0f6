package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type PerformanceHistoryRepo interface {
  Create(ctx context.Context, tx *gorm.DB, row *types.PerformanceHistory) error
  ListRecent(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int, limit int) ([]*types.PerformanceHistory, error)
  CountSince(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, since time.Time) (int64, error)
}

type performanceHistoryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPerformanceHistoryRepo(db *gorm.DB, baseLog *logger.Logger) PerformanceHistoryRepo {
  repoLog := baseLog.With("repo", "PerformanceHistoryRepo")
  return &performanceHistoryRepo{db: db, log: repoLog}
}

func (r *performanceHistoryRepo) Create(ctx context.Context, tx *gorm.DB, row *types.PerformanceHistory) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row.ID == uuid.Nil {
    row.ID = uuid.New()
  }
  return transaction.WithContext(ctx).Create(row).Error
}

// ListRecent returns the newest entries first.
func (r *performanceHistoryRepo) ListRecent(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int, limit int) ([]*types.PerformanceHistory, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.PerformanceHistory
  if err := transaction.WithContext(ctx).
    Where("teacher_id = ? AND module_id = ?", teacherID, moduleID).
    Order("created_at DESC").
    Limit(limit).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *performanceHistoryRepo) CountSince(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, since time.Time) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.PerformanceHistory{}).
    Where("teacher_id = ? AND created_at > ?", teacherID, since).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
