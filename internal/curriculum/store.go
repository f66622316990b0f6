package curriculum

import (
  "context"

  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

// Store reads the external curriculum database. Keys are case-sensitive;
// a missing (board, class, subject) tuple yields an empty slice, not an
// error. Nothing is cached: every request re-queries.
type Store interface {
  ListTopics(ctx context.Context, board, class, subject string) ([]*types.CurriculumTopic, error)
}

type store struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewStore(db *gorm.DB, baseLog *logger.Logger) Store {
  storeLog := baseLog.With("service", "CurriculumStore")
  return &store{db: db, log: storeLog}
}

func (s *store) ListTopics(ctx context.Context, board, class, subject string) ([]*types.CurriculumTopic, error) {
  var results []*types.CurriculumTopic
  if err := s.db.WithContext(ctx).
    Where("board = ? AND class = ? AND subject = ?", board, class, subject).
    Order("sequence ASC").
    Find(&results).Error; err != nil {
    s.log.Warn("ListTopics query failed", "error", err, "board", board, "class", class, "subject", subject)
    return nil, err
  }
  return results, nil
}
