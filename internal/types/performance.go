package types

import (
  "time"

  "github.com/google/uuid"
)

// Performance holds the latest (teacher, module) score, exactly one row
// per pair. The scorer owns the only write path.
type Performance struct {
  ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
  TeacherID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_performance_teacher_module" json:"teacher_id"`
  ModuleID  int       `gorm:"not null;uniqueIndex:idx_performance_teacher_module" json:"module_id"`
  Score     float64   `gorm:"column:score;not null" json:"score"`
  Rating    string    `gorm:"column:rating;not null" json:"rating"`
  Details   string    `gorm:"column:details" json:"details"`
  CreatedAt time.Time `gorm:"not null" json:"created_at"`
  UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Performance) TableName() string { return "performance" }
