package profile

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type Input struct {
  EducationLevel  string `json:"education_level"`
  GradesTaught    string `json:"grades_taught"`
  SubjectsTaught  string `json:"subjects_taught"`
  ExperienceYears int    `json:"experience_years"`
  Board           string `json:"board"`
  State           string `json:"state"`
}

// Service owns the teacher profile. A profile is created once and only
// its owner may change it.
type Service interface {
  Get(ctx context.Context, teacherID uuid.UUID) (*types.TeacherProfile, error)
  Upsert(ctx context.Context, teacherID uuid.UUID, input Input) (*types.TeacherProfile, error)
}

type service struct {
  db          *gorm.DB
  log         *logger.Logger
  profileRepo repos.TeacherProfileRepo
}

func NewService(db *gorm.DB, baseLog *logger.Logger, profileRepo repos.TeacherProfileRepo) Service {
  return &service{
    db:          db,
    log:         baseLog.With("service", "ProfileService"),
    profileRepo: profileRepo,
  }
}

func (s *service) Get(ctx context.Context, teacherID uuid.UUID) (*types.TeacherProfile, error) {
  existing, err := s.profileRepo.GetByTeacherID(ctx, nil, teacherID)
  if err != nil {
    return nil, err
  }
  if existing == nil {
    return nil, apperr.New(apperr.KindProfileMissing, "no profile for this teacher")
  }
  return existing, nil
}

func (s *service) Upsert(ctx context.Context, teacherID uuid.UUID, input Input) (*types.TeacherProfile, error) {
  existing, err := s.profileRepo.GetByTeacherID(ctx, nil, teacherID)
  if err != nil {
    return nil, err
  }

  if existing == nil {
    created := &types.TeacherProfile{
      ID:              uuid.New(),
      TeacherID:       teacherID,
      EducationLevel:  input.EducationLevel,
      GradesTaught:    input.GradesTaught,
      SubjectsTaught:  input.SubjectsTaught,
      ExperienceYears: input.ExperienceYears,
      Board:           input.Board,
      State:           input.State,
    }
    return s.profileRepo.Create(ctx, nil, created)
  }

  existing.EducationLevel = input.EducationLevel
  existing.GradesTaught = input.GradesTaught
  existing.SubjectsTaught = input.SubjectsTaught
  existing.ExperienceYears = input.ExperienceYears
  existing.Board = input.Board
  existing.State = input.State
  if err := s.profileRepo.Update(ctx, nil, existing); err != nil {
    return nil, err
  }
  return existing, nil
}
