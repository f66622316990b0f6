package repos

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type RecommendationRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rec *types.Recommendation) (*types.Recommendation, error)
  GetByID(ctx context.Context, tx *gorm.DB, recID uuid.UUID) (*types.Recommendation, error)
  ExistsForCourse(ctx context.Context, tx *gorm.DB, teacherID, courseID uuid.UUID) (bool, error)
  ListVisible(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.Recommendation, error)
  ListByStatuses(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, statuses []string) ([]*types.Recommendation, error)
  UpdateStatus(ctx context.Context, tx *gorm.DB, recID uuid.UUID, status string) error
}

type recommendationRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
  repoLog := baseLog.With("repo", "RecommendationRepo")
  return &recommendationRepo{db: db, log: repoLog}
}

func (r *recommendationRepo) Create(ctx context.Context, tx *gorm.DB, rec *types.Recommendation) (*types.Recommendation, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if rec.ID == uuid.Nil {
    rec.ID = uuid.New()
  }
  if err := transaction.WithContext(ctx).Create(rec).Error; err != nil {
    return nil, err
  }
  return rec, nil
}

func (r *recommendationRepo) GetByID(ctx context.Context, tx *gorm.DB, recID uuid.UUID) (*types.Recommendation, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.Recommendation
  err := transaction.WithContext(ctx).
    Where("id = ?", recID).
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

// ExistsForCourse reports whether the teacher carries any recommendation
// row for the course, in any status. Dismissed and completed rows are
// terminal for recommendation purposes; the course is never re-offered.
func (r *recommendationRepo) ExistsForCourse(ctx context.Context, tx *gorm.DB, teacherID, courseID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Recommendation{}).
    Where("teacher_id = ? AND course_id = ?", teacherID, courseID).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

// ListVisible returns open recommendations only; enrolled, completed and
// dismissed rows stay in storage but are filtered out.
func (r *recommendationRepo) ListVisible(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.Recommendation, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Recommendation
  if err := transaction.WithContext(ctx).
    Preload("Course").
    Where("teacher_id = ? AND status = ?", teacherID, types.RecommendationStatusRecommended).
    Order("score DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *recommendationRepo) ListByStatuses(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, statuses []string) ([]*types.Recommendation, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Recommendation
  if len(statuses) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("Course").
    Where("teacher_id = ? AND status IN ?", teacherID, statuses).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *recommendationRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, recID uuid.UUID, status string) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.Recommendation{}).
    Where("id = ?", recID).
    Update("status", status).Error
}
