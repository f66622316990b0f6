package types

import (
  "gorm.io/datatypes"
)

// CurriculumTopic maps the external read-only curriculum store. Keys
// (board, class, subject) are case-sensitive; the core never writes or
// migrates this table.
type CurriculumTopic struct {
  ID               int            `gorm:"primaryKey" json:"id"`
  Board            string         `gorm:"column:board;not null" json:"board"`
  Class            string         `gorm:"column:class;not null" json:"class"`
  Subject          string         `gorm:"column:subject;not null" json:"subject"`
  Chapter          string         `gorm:"column:chapter" json:"chapter"`
  Topic            string         `gorm:"column:topic;not null" json:"topic"`
  Unit             string         `gorm:"column:unit" json:"unit"`
  ContentDetails   string         `gorm:"column:content_details" json:"content_details"`
  KeyConcepts      datatypes.JSON `gorm:"column:key_concepts" json:"key_concepts,omitempty"`
  LearningOutcomes datatypes.JSON `gorm:"column:learning_outcomes" json:"learning_outcomes,omitempty"`
  Subtopics        datatypes.JSON `gorm:"column:subtopics" json:"subtopics,omitempty"`
  Sequence         int            `gorm:"column:sequence;not null;default:0" json:"sequence"`
}

func (CurriculumTopic) TableName() string { return "curriculum_topics" }
