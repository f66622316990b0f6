package repos

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type PerformanceRepo interface {
  Get(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int) (*types.Performance, error)
  Upsert(ctx context.Context, tx *gorm.DB, row *types.Performance) error
  ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.Performance, error)
  ListByTeacherIDs(ctx context.Context, tx *gorm.DB, teacherIDs []uuid.UUID) ([]*types.Performance, error)
}

type performanceRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPerformanceRepo(db *gorm.DB, baseLog *logger.Logger) PerformanceRepo {
  repoLog := baseLog.With("repo", "PerformanceRepo")
  return &performanceRepo{db: db, log: repoLog}
}

func (r *performanceRepo) Get(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int) (*types.Performance, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.Performance
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

// Upsert keeps exactly one row per (teacher, module): update when the row
// exists, insert otherwise.
func (r *performanceRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.Performance) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  existing, err := r.Get(ctx, transaction, row.TeacherID, row.ModuleID)
  if err != nil {
    return err
  }
  if existing == nil {
    if row.ID == uuid.Nil {
      row.ID = uuid.New()
    }
    return transaction.WithContext(ctx).Create(row).Error
  }

  return transaction.WithContext(ctx).
    Model(&types.Performance{}).
    Where("id = ?", existing.ID).
    Updates(map[string]interface{}{
      "score":   row.Score,
      "rating":  row.Rating,
      "details": row.Details,
    }).Error
}

func (r *performanceRepo) ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.Performance, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Performance
  if err := transaction.WithContext(ctx).
    Where("teacher_id = ?", teacherID).
    Order("module_id ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *performanceRepo) ListByTeacherIDs(ctx context.Context, tx *gorm.DB, teacherIDs []uuid.UUID) ([]*types.Performance, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Performance
  if len(teacherIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("teacher_id IN ?", teacherIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
