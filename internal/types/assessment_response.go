package types

import (
  "time"

  "github.com/google/uuid"
)

// AssessmentResponse is append-only. A response may only reference a
// question created for the same (teacher, module).
type AssessmentResponse struct {
  ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
  TeacherID  uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`
  ModuleID   int       `gorm:"not null;index" json:"module_id"`
  QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
  Selected   string    `gorm:"column:selected;not null" json:"selected"`
  IsCorrect  bool      `gorm:"column:is_correct;not null" json:"is_correct"`
  CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (AssessmentResponse) TableName() string { return "assessment_response" }
