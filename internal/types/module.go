package types

import (
  "time"
)

const (
  CategoryKnowledge = "knowledge"
  CategoryPortfolio = "portfolio"
  CategoryOutcomes  = "outcomes"

  AssessmentTypeMCQ        = "mcq"
  AssessmentTypeSubmission = "submission"
  AssessmentTypeOutcome    = "outcome"
)

// Module is a fixed catalogue entry. Seeded at deploy, never mutated at
// runtime.
type Module struct {
  ID                  int       `gorm:"primaryKey" json:"id"`
  Name                string    `gorm:"uniqueIndex;not null" json:"name"`
  Description         string    `gorm:"column:description" json:"description"`
  Category            string    `gorm:"column:category;not null" json:"category"`
  AssessmentType      string    `gorm:"column:assessment_type;not null" json:"assessment_type"`
  TimeLimitMinutes    int       `gorm:"column:time_limit_minutes;not null;default:30" json:"time_limit_minutes"`
  CooldownHours       int       `gorm:"column:cooldown_hours;not null;default:24" json:"cooldown_hours"`
  MaxAttemptsPerMonth int       `gorm:"column:max_attempts_per_month;not null;default:3" json:"max_attempts_per_month"`
  CreatedAt           time.Time `gorm:"not null" json:"created_at"`
  UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (Module) TableName() string { return "module" }
