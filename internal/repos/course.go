package repos

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type CourseRepo interface {
  UpsertByURL(ctx context.Context, tx *gorm.DB, course *types.Course) (*types.Course, error)
}

type courseRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
  repoLog := baseLog.With("repo", "CourseRepo")
  return &courseRepo{db: db, log: repoLog}
}

// UpsertByURL deduplicates ingested courses by URL. An existing row wins
// its identity; metadata is refreshed from the incoming copy.
func (r *courseRepo) UpsertByURL(ctx context.Context, tx *gorm.DB, course *types.Course) (*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var existing types.Course
  err := transaction.WithContext(ctx).
    Where("url = ?", course.URL).
    First(&existing).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    if course.ID == uuid.Nil {
      course.ID = uuid.New()
    }
    if err := transaction.WithContext(ctx).Create(course).Error; err != nil {
      return nil, err
    }
    return course, nil
  }
  if err != nil {
    return nil, err
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Course{}).
    Where("id = ?", existing.ID).
    Updates(map[string]interface{}{
      "title":          course.Title,
      "description":    course.Description,
      "platform":       course.Platform,
      "category":       course.Category,
      "duration_hours": course.DurationHours,
      "difficulty":     course.Difficulty,
    }).Error; err != nil {
    return nil, err
  }
  course.ID = existing.ID
  return course, nil
}
