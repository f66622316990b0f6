package repos

import (
  "context"
  "errors"

  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type ModuleRepo interface {
  GetByID(ctx context.Context, tx *gorm.DB, moduleID int) (*types.Module, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.Module, error)
  CreateIfMissing(ctx context.Context, tx *gorm.DB, module *types.Module) error
}

type moduleRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
  repoLog := baseLog.With("repo", "ModuleRepo")
  return &moduleRepo{db: db, log: repoLog}
}

func (r *moduleRepo) GetByID(ctx context.Context, tx *gorm.DB, moduleID int) (*types.Module, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.Module
  err := transaction.WithContext(ctx).
    Where("id = ?", moduleID).
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *moduleRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Module, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Module
  if err := transaction.WithContext(ctx).
    Order("id ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// CreateIfMissing inserts the catalogue entry unless a module with the
// same name already exists. The catalogue is seeded at deploy and never
// mutated at runtime, so existing rows are left untouched.
func (r *moduleRepo) CreateIfMissing(ctx context.Context, tx *gorm.DB, module *types.Module) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Module{}).
    Where("name = ?", module.Name).
    Count(&count).Error; err != nil {
    return err
  }
  if count > 0 {
    return nil
  }
  return transaction.WithContext(ctx).Create(module).Error
}
