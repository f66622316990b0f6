package recommend

import (
  "context"
  "encoding/json"
  "fmt"
  "strings"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/analysis"
  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
  "github.com/shikshaloop/shikshaloop-backend/internal/assessment"
  "github.com/shikshaloop/shikshaloop-backend/internal/llm"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

const maxPriorityAreas = 3

var priorityScores = map[analysis.Priority]float64{
  analysis.PriorityUrgent: 95,
  analysis.PriorityHigh:   85,
  analysis.PriorityMedium: 75,
  analysis.PriorityLow:    65,
}

// Planner turns priority areas into persisted course recommendations and
// owns the teacher-facing status transitions.
type Planner interface {
  GenerateRecommendations(ctx context.Context, teacherID uuid.UUID) ([]*types.Recommendation, error)
  ListVisible(ctx context.Context, teacherID uuid.UUID) ([]*types.Recommendation, error)
  Enroll(ctx context.Context, teacherID, recommendationID uuid.UUID) error
  Complete(ctx context.Context, teacherID, recommendationID uuid.UUID) error
  Dismiss(ctx context.Context, teacherID, recommendationID uuid.UUID) error
}

type plannerService struct {
  db          *gorm.DB
  log         *logger.Logger
  llmClient   llm.Client
  analyser    analysis.Service
  profileRepo repos.TeacherProfileRepo
  courseRepo  repos.CourseRepo
  recRepo     repos.RecommendationRepo
}

func NewPlanner(
  db *gorm.DB,
  baseLog *logger.Logger,
  llmClient llm.Client,
  analyser analysis.Service,
  profileRepo repos.TeacherProfileRepo,
  courseRepo repos.CourseRepo,
  recRepo repos.RecommendationRepo,
) Planner {
  return &plannerService{
    db:          db,
    log:         baseLog.With("service", "RecommendationPlanner"),
    llmClient:   llmClient,
    analyser:    analyser,
    profileRepo: profileRepo,
    courseRepo:  courseRepo,
    recRepo:     recRepo,
  }
}

// candidate is a course plus its recommendation metadata, assembled
// before the persistence transaction.
type candidate struct {
  course    *types.Course
  area      *analysis.ModuleTrend
  reasoning string
}

func (s *plannerService) GenerateRecommendations(ctx context.Context, teacherID uuid.UUID) ([]*types.Recommendation, error) {
  profile, err := s.profileRepo.GetByTeacherID(ctx, nil, teacherID)
  if err != nil {
    return nil, err
  }
  if profile == nil {
    return nil, apperr.New(apperr.KindProfileMissing, "complete your teacher profile to receive recommendations")
  }

  areas, err := s.analyser.PriorityAreas(ctx, teacherID, maxPriorityAreas)
  if err != nil {
    return nil, err
  }

  enrolled, err := s.enrolledPlatforms(ctx, teacherID)
  if err != nil {
    return nil, err
  }

  candidates := s.discover(ctx, profile, areas, enrolled)
  if len(candidates) == 0 {
    candidates = s.fallbackCandidates(profile, areas)
  }

  return s.persist(ctx, teacherID, candidates)
}

func (s *plannerService) enrolledPlatforms(ctx context.Context, teacherID uuid.UUID) (map[string]bool, error) {
  taken, err := s.recRepo.ListByStatuses(ctx, nil, teacherID, []string{
    types.RecommendationStatusEnrolled,
    types.RecommendationStatusCompleted,
  })
  if err != nil {
    return nil, err
  }
  platforms := make(map[string]bool, len(taken))
  for _, rec := range taken {
    if rec.Course != nil {
      platforms[strings.ToUpper(rec.Course.Platform)] = true
    }
  }
  return platforms, nil
}

// discover runs one course-discovery call per priority area. Any model
// failure abandons the whole batch; the caller substitutes the
// deterministic fallback.
func (s *plannerService) discover(ctx context.Context, profile *types.TeacherProfile, areas []*analysis.ModuleTrend, enrolled map[string]bool) []*candidate {
  var candidates []*candidate
  for i, area := range areas {
    platform := PickPlatform(i, enrolled)
    prompt := courseDiscoveryPrompt(profile, area, platform)

    obj, err := s.llmClient.GenerateObject(ctx, prompt, &llm.CallOptions{Timeout: llm.ShortCallTimeout})
    if err != nil {
      s.log.Warn("Course discovery failed, switching to fallback",
        "error", err, "module", area.ModuleName, "platform", platform)
      return nil
    }

    course := s.courseFromModelOutput(obj, profile, area, platform)
    candidates = append(candidates, &candidate{
      course:    course,
      area:      area,
      reasoning: focusMessage(area),
    })
  }
  return candidates
}

func courseDiscoveryPrompt(profile *types.TeacherProfile, area *analysis.ModuleTrend, platform string) string {
  subjects := assessment.ParseSubjects(profile.SubjectsTaught)
  subject := "General"
  if len(subjects) > 0 {
    subject = subjects[0]
  }
  grades := assessment.ParseGrades(profile.GradesTaught)
  grade := 8
  if len(grades) > 0 {
    grade = grades[0]
  }
  board := assessment.ResolveBoard(profile.Board, profile.State)

  return fmt.Sprintf(`Recommend exactly 1 professional development course on %s for an Indian school teacher.

Teacher context:
- Improvement area: %s (current score %.0f%%, trend: %s)
- Subject taught: %s
- Primary grade: %d
- Board: %s
- State: %s
- Suitable difficulty: %s
- max_courses: 1

Return ONLY a JSON object, no other text:
{"title": "...", "description": "...", "platform": "%s", "category": "...", "duration_hours": 10, "target_subjects": ["%s"], "difficulty": "%s", "relevance_reason": "one sentence on why this course fits"}`,
    platform, area.ModuleName, area.CurrentScore, area.Trend,
    subject, grade, board, profile.State,
    area.RecommendedDifficulty, platform, subject, area.RecommendedDifficulty)
}

func (s *plannerService) courseFromModelOutput(obj map[string]interface{}, profile *types.TeacherProfile, area *analysis.ModuleTrend, platform string) *types.Course {
  str := func(key, fallback string) string {
    if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
      return strings.TrimSpace(v)
    }
    return fallback
  }

  title := str("title", fmt.Sprintf("%s Essentials", area.ModuleName))
  platform = CanonicalPlatform(str("platform", platform), platform)

  durationHours := 10
  if v, ok := obj["duration_hours"].(float64); ok && v > 0 {
    durationHours = int(v)
  }

  subjects := assessment.ParseSubjects(profile.SubjectsTaught)
  if raw, ok := obj["target_subjects"].([]interface{}); ok {
    var parsed []string
    for _, entry := range raw {
      if sv, ok := entry.(string); ok {
        parsed = append(parsed, assessment.CanonicalSubject(sv))
      }
    }
    if len(parsed) > 0 {
      subjects = parsed
    }
  }

  board := assessment.ResolveBoard(profile.Board, profile.State)
  grades := assessment.ParseGrades(profile.GradesTaught)

  return &types.Course{
    ID:                   uuid.New(),
    Title:                title,
    Description:          str("description", fmt.Sprintf("A %s course on %s.", platform, area.ModuleName)),
    URL:                  CourseURL(platform, title),
    Platform:             platform,
    Category:             str("category", area.ModuleName),
    DurationHours:        durationHours,
    Difficulty:           str("difficulty", area.RecommendedDifficulty),
    TargetSubjects:       mustJSON(subjects),
    TargetGrades:         mustJSON(grades),
    TargetBoards:         mustJSON([]string{board}),
    CertificateAvailable: true,
    Provider:             PlatformProvider(platform),
  }
}

// fallbackCandidates points at the three platform catalogues with generic
// copy when the model path yields nothing.
func (s *plannerService) fallbackCandidates(profile *types.TeacherProfile, areas []*analysis.ModuleTrend) []*candidate {
  subjects := assessment.ParseSubjects(profile.SubjectsTaught)
  subject := "General"
  if len(subjects) > 0 {
    subject = subjects[0]
  }

  var candidates []*candidate
  for i, platform := range platformRotation {
    var area *analysis.ModuleTrend
    if i < len(areas) {
      area = areas[i]
    }
    focus := subject
    if area != nil {
      focus = area.ModuleName
    }
    course := &types.Course{
      ID:                   uuid.New(),
      Title:                fmt.Sprintf("Explore %s courses on %s", focus, platform),
      Description:          fmt.Sprintf("Browse the %s catalogue for teacher development courses on %s.", platform, focus),
      URL:                  PlatformURL(platform),
      Platform:             platform,
      Category:             focus,
      DurationHours:        0,
      Difficulty:           analysis.DifficultyIntermediate,
      TargetSubjects:       mustJSON([]string{subject}),
      CertificateAvailable: false,
      Provider:             PlatformProvider(platform),
    }
    reasoning := fmt.Sprintf("Course discovery is temporarily unavailable; the %s catalogue covers %s.", platform, focus)
    candidates = append(candidates, &candidate{course: course, area: area, reasoning: reasoning})
  }
  return candidates
}

func (s *plannerService) persist(ctx context.Context, teacherID uuid.UUID, candidates []*candidate) ([]*types.Recommendation, error) {
  var created []*types.Recommendation

  txErr := s.db.Transaction(func(tx *gorm.DB) error {
    for _, c := range candidates {
      course, err := s.courseRepo.UpsertByURL(ctx, tx, c.course)
      if err != nil {
        return err
      }

      exists, err := s.recRepo.ExistsForCourse(ctx, tx, teacherID, course.ID)
      if err != nil {
        return err
      }
      if exists {
        continue
      }

      priority := analysis.PriorityMedium
      improvementArea := course.Category
      var performanceContext datatypes.JSON
      if c.area != nil {
        priority = c.area.Priority
        improvementArea = c.area.ModuleName
        performanceContext = mustJSON(map[string]interface{}{
          "current_score": c.area.CurrentScore,
          "trend":         c.area.Trend,
          "change_pct":    c.area.ChangePct,
          "priority":      c.area.Priority,
        })
      }

      rec := &types.Recommendation{
        ID:                 uuid.New(),
        TeacherID:          teacherID,
        CourseID:           course.ID,
        Status:             types.RecommendationStatusRecommended,
        Score:              priorityScores[priority],
        Priority:           string(priority),
        Reasoning:          c.reasoning,
        ImprovementArea:    improvementArea,
        PerformanceContext: performanceContext,
      }
      if _, err := s.recRepo.Create(ctx, tx, rec); err != nil {
        return err
      }
      rec.Course = course
      created = append(created, rec)
    }
    return nil
  })
  if txErr != nil {
    return nil, txErr
  }
  return created, nil
}

// focusMessage renders the human-readable reasoning line from the trend
// and score.
func focusMessage(area *analysis.ModuleTrend) string {
  switch area.Trend {
  case analysis.TrendDeclined:
    return fmt.Sprintf("Your %s score dropped from %.0f%% to %.0f%%. This course rebuilds the fundamentals before the slide continues.",
      area.ModuleName, area.PreviousScore, area.CurrentScore)
  case analysis.TrendImproved:
    return fmt.Sprintf("Your %s score is climbing (now %.0f%%). This course keeps the momentum going with the next level of practice.",
      area.ModuleName, area.CurrentScore)
  case analysis.TrendNew:
    return fmt.Sprintf("You scored %.0f%% on your first %s assessment. This course builds a solid base in the area.",
      area.CurrentScore, area.ModuleName)
  default:
    return fmt.Sprintf("Your %s score has plateaued at %.0f%%. This course introduces fresh strategies to break through.",
      area.ModuleName, area.CurrentScore)
  }
}

func (s *plannerService) ListVisible(ctx context.Context, teacherID uuid.UUID) ([]*types.Recommendation, error) {
  return s.recRepo.ListVisible(ctx, nil, teacherID)
}

func (s *plannerService) Enroll(ctx context.Context, teacherID, recommendationID uuid.UUID) error {
  return s.transition(ctx, teacherID, recommendationID,
    types.RecommendationStatusRecommended, types.RecommendationStatusEnrolled)
}

func (s *plannerService) Complete(ctx context.Context, teacherID, recommendationID uuid.UUID) error {
  return s.transition(ctx, teacherID, recommendationID,
    types.RecommendationStatusEnrolled, types.RecommendationStatusCompleted)
}

func (s *plannerService) Dismiss(ctx context.Context, teacherID, recommendationID uuid.UUID) error {
  return s.transition(ctx, teacherID, recommendationID,
    types.RecommendationStatusRecommended, types.RecommendationStatusDismissed)
}

func (s *plannerService) transition(ctx context.Context, teacherID, recommendationID uuid.UUID, from, to string) error {
  rec, err := s.recRepo.GetByID(ctx, nil, recommendationID)
  if err != nil {
    return err
  }
  if rec == nil || rec.TeacherID != teacherID {
    return gorm.ErrRecordNotFound
  }
  if rec.Status != from {
    return fmt.Errorf("recommendation is %s, cannot move to %s", rec.Status, to)
  }
  return s.recRepo.UpdateStatus(ctx, nil, recommendationID, to)
}

func mustJSON(v interface{}) datatypes.JSON {
  raw, err := json.Marshal(v)
  if err != nil {
    return nil
  }
  return datatypes.JSON(raw)
}
