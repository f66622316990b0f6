package repos

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type GrowthPlanRepo interface {
  Create(ctx context.Context, tx *gorm.DB, plan *types.GrowthPlan) (*types.GrowthPlan, error)
  GetActive(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) (*types.GrowthPlan, error)
  DeactivateActive(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) error
}

type growthPlanRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewGrowthPlanRepo(db *gorm.DB, baseLog *logger.Logger) GrowthPlanRepo {
  repoLog := baseLog.With("repo", "GrowthPlanRepo")
  return &growthPlanRepo{db: db, log: repoLog}
}

func (r *growthPlanRepo) Create(ctx context.Context, tx *gorm.DB, plan *types.GrowthPlan) (*types.GrowthPlan, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if plan.ID == uuid.Nil {
    plan.ID = uuid.New()
  }
  if err := transaction.WithContext(ctx).Create(plan).Error; err != nil {
    return nil, err
  }
  return plan, nil
}

func (r *growthPlanRepo) GetActive(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) (*types.GrowthPlan, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.GrowthPlan
  err := transaction.WithContext(ctx).
    Where("teacher_id = ? AND is_active = ?", teacherID, true).
    Order("generated_at DESC").
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *growthPlanRepo) DeactivateActive(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.GrowthPlan{}).
    Where("teacher_id = ? AND is_active = ?", teacherID, true).
    Update("is_active", false).Error
}
