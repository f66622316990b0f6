package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// GrowthPlan is a 30-day markdown plan. At most one is active per
// teacher; generating a new one deactivates the prior.
type GrowthPlan struct {
  ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  TeacherID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"teacher_id"`
  Content          string         `gorm:"column:content;not null" json:"content"`
  GeneratedContext datatypes.JSON `gorm:"column:generated_context" json:"generated_context,omitempty"`
  Version          int            `gorm:"column:version;not null;default:1" json:"version"`
  IsActive         bool           `gorm:"column:is_active;not null;default:false" json:"is_active"`
  GeneratedAt      time.Time      `gorm:"column:generated_at;not null" json:"generated_at"`
  ExpiresAt        time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
  CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
  UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (GrowthPlan) TableName() string { return "growth_plan" }
