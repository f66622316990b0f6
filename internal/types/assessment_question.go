package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// AssessmentQuestion is owned by (teacher, module). Options always hold
// exactly four strings; CorrectAnswer is a single letter A-D. Rows are
// created transactionally when a test is generated and never mutated.
type AssessmentQuestion struct {
  ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  TeacherID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_question_teacher_module" json:"teacher_id"`
  ModuleID      int            `gorm:"not null;index:idx_question_teacher_module" json:"module_id"`
  Prompt        string         `gorm:"column:prompt;not null" json:"prompt"`
  Topic         string         `gorm:"column:topic" json:"topic,omitempty"`
  Options       datatypes.JSON `gorm:"column:options;not null" json:"options"`
  CorrectAnswer string         `gorm:"column:correct_answer;not null" json:"-"`
  Explanation   string         `gorm:"column:explanation" json:"explanation,omitempty"`
  BloomLevel    string         `gorm:"column:bloom_level" json:"bloom_level,omitempty"`
  CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (AssessmentQuestion) TableName() string { return "assessment_question" }
