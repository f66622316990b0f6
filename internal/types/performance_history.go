package types

import (
  "time"

  "github.com/google/uuid"
)

// PerformanceHistory is an append-only snapshot of every completed
// scoring, ordered by insertion time. Trend analysis reads it, nothing
// rewrites it.
type PerformanceHistory struct {
  ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
  TeacherID uuid.UUID `gorm:"type:uuid;not null;index:idx_history_teacher_module" json:"teacher_id"`
  ModuleID  int       `gorm:"not null;index:idx_history_teacher_module" json:"module_id"`
  Score     float64   `gorm:"column:score;not null" json:"score"`
  Rating    string    `gorm:"column:rating;not null" json:"rating"`
  CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (PerformanceHistory) TableName() string { return "performance_history" }
