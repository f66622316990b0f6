package repos

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type TeacherProfileRepo interface {
  Create(ctx context.Context, tx *gorm.DB, profile *types.TeacherProfile) (*types.TeacherProfile, error)
  Update(ctx context.Context, tx *gorm.DB, profile *types.TeacherProfile) error
  GetByTeacherID(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) (*types.TeacherProfile, error)
  ListByBoard(ctx context.Context, tx *gorm.DB, board string) ([]*types.TeacherProfile, error)
}

type teacherProfileRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTeacherProfileRepo(db *gorm.DB, baseLog *logger.Logger) TeacherProfileRepo {
  repoLog := baseLog.With("repo", "TeacherProfileRepo")
  return &teacherProfileRepo{db: db, log: repoLog}
}

func (r *teacherProfileRepo) Create(ctx context.Context, tx *gorm.DB, profile *types.TeacherProfile) (*types.TeacherProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(profile).Error; err != nil {
    return nil, err
  }
  return profile, nil
}

func (r *teacherProfileRepo) Update(ctx context.Context, tx *gorm.DB, profile *types.TeacherProfile) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).Save(profile).Error
}

func (r *teacherProfileRepo) GetByTeacherID(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) (*types.TeacherProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.TeacherProfile
  err := transaction.WithContext(ctx).
    Where("teacher_id = ?", teacherID).
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *teacherProfileRepo) ListByBoard(ctx context.Context, tx *gorm.DB, board string) ([]*types.TeacherProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.TeacherProfile
  if err := transaction.WithContext(ctx).
    Where("board = ?", board).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
