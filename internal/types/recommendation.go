package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

const (
  RecommendationStatusRecommended = "recommended"
  RecommendationStatusEnrolled    = "enrolled"
  RecommendationStatusCompleted   = "completed"
  RecommendationStatusDismissed   = "dismissed"
)

// Recommendation is born as recommended and transitions monotonically;
// dismissed and completed are terminal. Dismissed/completed rows stay in
// storage but drop out of the visible set.
type Recommendation struct {
  ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  TeacherID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"teacher_id"`
  CourseID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
  Course             *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
  Status             string         `gorm:"column:status;not null;default:'recommended'" json:"status"`
  Score              float64        `gorm:"column:score;not null" json:"score"`
  Priority           string         `gorm:"column:priority;not null" json:"priority"`
  Reasoning          string         `gorm:"column:reasoning" json:"reasoning"`
  ImprovementArea    string         `gorm:"column:improvement_area" json:"improvement_area"`
  PerformanceContext datatypes.JSON `gorm:"column:performance_context" json:"performance_context,omitempty"`
  CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
  UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
  DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Recommendation) TableName() string { return "recommendation" }
