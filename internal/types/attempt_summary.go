package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// AttemptSummary is upserted from completed attempts, one row per
// (teacher, module).
type AttemptSummary struct {
  ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  TeacherID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_summary_teacher_module" json:"teacher_id"`
  ModuleID          int            `gorm:"not null;uniqueIndex:idx_summary_teacher_module" json:"module_id"`
  TotalAttempts     int            `gorm:"column:total_attempts;not null;default:0" json:"total_attempts"`
  BestScore         float64        `gorm:"column:best_score;not null;default:0" json:"best_score"`
  LatestScore       float64        `gorm:"column:latest_score;not null;default:0" json:"latest_score"`
  FirstAttemptScore float64        `gorm:"column:first_attempt_score;not null;default:0" json:"first_attempt_score"`
  AverageScore      float64        `gorm:"column:average_score;not null;default:0" json:"average_score"`
  ImprovementRate   float64        `gorm:"column:improvement_rate;not null;default:0" json:"improvement_rate"`
  WeakTopics        datatypes.JSON `gorm:"column:weak_topics" json:"weak_topics,omitempty"`
  CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
  UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
}

func (AttemptSummary) TableName() string { return "attempt_summary" }
