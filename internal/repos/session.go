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

type SessionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, session *types.AssessmentSession) (*types.AssessmentSession, error)
  GetActive(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int) (*types.AssessmentSession, error)
  DeactivateActive(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int) error
  MarkSubmitted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, at time.Time) error
}

type sessionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
  repoLog := baseLog.With("repo", "SessionRepo")
  return &sessionRepo{db: db, log: repoLog}
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.AssessmentSession) (*types.AssessmentSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
    return nil, err
  }
  return session, nil
}

func (r *sessionRepo) GetActive(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int) (*types.AssessmentSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.AssessmentSession
  err := transaction.WithContext(ctx).
    Where("teacher_id = ? AND module_id = ? AND is_active = ?", teacherID, moduleID, true).
    Order("started_at DESC").
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

// DeactivateActive enforces the single-active-session invariant before a
// new session is inserted for the pair.
func (r *sessionRepo) DeactivateActive(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.AssessmentSession{}).
    Where("teacher_id = ? AND module_id = ? AND is_active = ?", teacherID, moduleID, true).
    Update("is_active", false).Error
}

func (r *sessionRepo) MarkSubmitted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, at time.Time) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.AssessmentSession{}).
    Where("id = ?", sessionID).
    Updates(map[string]interface{}{
      "is_active":    false,
      "submitted_at": at,
    }).Error
}
