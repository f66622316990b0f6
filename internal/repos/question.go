package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type QuestionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, questions []*types.AssessmentQuestion) ([]*types.AssessmentQuestion, error)
  GetByIDsForOwner(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int, questionIDs []uuid.UUID) ([]*types.AssessmentQuestion, error)
}

type questionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
  repoLog := baseLog.With("repo", "QuestionRepo")
  return &questionRepo{db: db, log: repoLog}
}

func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, questions []*types.AssessmentQuestion) ([]*types.AssessmentQuestion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(questions) == 0 {
    return []*types.AssessmentQuestion{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&questions).Error; err != nil {
    return nil, err
  }
  return questions, nil
}

// GetByIDsForOwner loads only questions that are both owned by the teacher
// and belong to the module. The scorer compares the loaded count to the
// requested count to reject foreign or cross-module ids.
func (r *questionRepo) GetByIDsForOwner(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int, questionIDs []uuid.UUID) ([]*types.AssessmentQuestion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.AssessmentQuestion
  if len(questionIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("teacher_id = ? AND module_id = ? AND id IN ?", teacherID, moduleID, questionIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
