package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// AssessmentSession is keyed by (teacher, module, attempt-number). At most
// one session per (teacher, module) is active; starting a new one
// deactivates any prior active session. Questions holds the snapshot of
// questions served, opaque to every component except the one that wrote it.
type AssessmentSession struct {
  ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  TeacherID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_session_teacher_module" json:"teacher_id"`
  ModuleID      int            `gorm:"not null;index:idx_session_teacher_module" json:"module_id"`
  AttemptNumber int            `gorm:"column:attempt_number;not null" json:"attempt_number"`
  StartedAt     time.Time      `gorm:"column:started_at;not null" json:"started_at"`
  ExpiresAt     time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
  IsActive      bool           `gorm:"column:is_active;not null;default:false" json:"is_active"`
  SubmittedAt   *time.Time     `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
  Questions     datatypes.JSON `gorm:"column:questions" json:"questions,omitempty"`
  CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
  UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (AssessmentSession) TableName() string { return "assessment_session" }
