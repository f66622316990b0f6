package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

// Course is external-provider CPD metadata, deduplicated by URL when
// ingested from model output.
type Course struct {
  ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  Title                string         `gorm:"column:title;not null" json:"title"`
  Description          string         `gorm:"column:description" json:"description"`
  URL                  string         `gorm:"column:url;uniqueIndex;not null" json:"url"`
  Platform             string         `gorm:"column:platform;not null" json:"platform"`
  Category             string         `gorm:"column:category" json:"category"`
  DurationHours        int            `gorm:"column:duration_hours;not null;default:0" json:"duration_hours"`
  Difficulty           string         `gorm:"column:difficulty" json:"difficulty"`
  TargetSubjects       datatypes.JSON `gorm:"column:target_subjects" json:"target_subjects,omitempty"`
  TargetGrades         datatypes.JSON `gorm:"column:target_grades" json:"target_grades,omitempty"`
  TargetBoards         datatypes.JSON `gorm:"column:target_boards" json:"target_boards,omitempty"`
  CertificateAvailable bool           `gorm:"column:certificate_available;not null;default:false" json:"certificate_available"`
  Provider             string         `gorm:"column:provider" json:"provider"`
  CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
  UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
  DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }
