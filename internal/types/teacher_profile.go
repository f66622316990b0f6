package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

// TeacherProfile is the personalisation context every core component reads.
// TeacherID is the external identity subject; the profile is created once
// and mutable by its owner only.
type TeacherProfile struct {
  ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  TeacherID       uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"teacher_id"`
  EducationLevel  string         `gorm:"column:education_level" json:"education_level"`
  GradesTaught    string         `gorm:"column:grades_taught" json:"grades_taught"`
  SubjectsTaught  string         `gorm:"column:subjects_taught" json:"subjects_taught"`
  ExperienceYears int            `gorm:"column:experience_years;not null;default:0" json:"experience_years"`
  Board           string         `gorm:"column:board" json:"board"`
  State           string         `gorm:"column:state" json:"state"`
  CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
  UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
  DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TeacherProfile) TableName() string { return "teacher_profile" }
