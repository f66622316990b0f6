package types

import (
  "time"

  "github.com/google/uuid"
)

// AttemptLimit is keyed by (teacher, module, year-month) and auto-created
// on first access with the module defaults. AttemptsUsed only ever grows
// within a month and never exceeds MaxAttempts.
type AttemptLimit struct {
  ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
  TeacherID            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_limit_teacher_module_month" json:"teacher_id"`
  ModuleID             int        `gorm:"not null;uniqueIndex:idx_limit_teacher_module_month" json:"module_id"`
  YearMonth            string     `gorm:"column:year_month;not null;uniqueIndex:idx_limit_teacher_module_month" json:"year_month"`
  AttemptsUsed         int        `gorm:"column:attempts_used;not null;default:0" json:"attempts_used"`
  MaxAttempts          int        `gorm:"column:max_attempts;not null" json:"max_attempts"`
  CooldownHours        int        `gorm:"column:cooldown_hours;not null" json:"cooldown_hours"`
  LastAttemptAt        *time.Time `gorm:"column:last_attempt_at" json:"last_attempt_at,omitempty"`
  NextAttemptAvailable *time.Time `gorm:"column:next_attempt_available" json:"next_attempt_available,omitempty"`
  CreatedAt            time.Time  `gorm:"not null" json:"created_at"`
  UpdatedAt            time.Time  `gorm:"not null" json:"updated_at"`
}

func (AttemptLimit) TableName() string { return "attempt_limit" }
