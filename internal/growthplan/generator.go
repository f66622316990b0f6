package growthplan

import (
  "context"
  "encoding/json"
  "fmt"
  "math"
  "sort"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/analysis"
  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
  "github.com/shikshaloop/shikshaloop-backend/internal/llm"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

const (
  // planValidity is the 30-day window a plan covers.
  planValidity = 30 * 24 * time.Hour
  // minPlanLength is the acceptance floor for model output; anything
  // shorter falls back to the deterministic template.
  minPlanLength = 500
  // regenScoreDelta is the overall-score movement that recommends a
  // fresh plan.
  regenScoreDelta = 10.0
  // regenAttemptCount is the number of new completed attempts that
  // recommends a fresh plan.
  regenAttemptCount = 2
)

var weeklySections = [4]string{
  "Week 1: Assessment & Foundation",
  "Week 2: Skill Development",
  "Week 3: Implementation",
  "Week 4: Evaluation & Mastery",
}

// generationContext is the snapshot embedded in every plan row. It is
// opaque to every other component.
type generationContext struct {
  OverallScore float64  `json:"overall_score"`
  WeakModules  []string `json:"weak_modules"`
  WeakTypes    []string `json:"weak_types"`
  FocusAreas   []string `json:"focus_areas,omitempty"`
  Fallback     bool     `json:"fallback"`
}

type RegenerationCheck struct {
  Recommended bool   `json:"recommended"`
  Reason      string `json:"reason,omitempty"`
}

// Generator produces 30-day markdown growth plans and tracks when the
// active plan has gone stale.
type Generator interface {
  Generate(ctx context.Context, teacherID uuid.UUID, focusAreas []string) (*types.GrowthPlan, error)
  GetActive(ctx context.Context, teacherID uuid.UUID) (*types.GrowthPlan, error)
  CheckRegeneration(ctx context.Context, teacherID uuid.UUID) (*RegenerationCheck, error)
}

type generatorService struct {
  db          *gorm.DB
  log         *logger.Logger
  llmClient   llm.Client
  analyser    analysis.Service
  profileRepo repos.TeacherProfileRepo
  planRepo    repos.GrowthPlanRepo
  historyRepo repos.PerformanceHistoryRepo

  now func() time.Time
}

func NewGenerator(
  db *gorm.DB,
  baseLog *logger.Logger,
  llmClient llm.Client,
  analyser analysis.Service,
  profileRepo repos.TeacherProfileRepo,
  planRepo repos.GrowthPlanRepo,
  historyRepo repos.PerformanceHistoryRepo,
) Generator {
  return &generatorService{
    db:          db,
    log:         baseLog.With("service", "GrowthPlanGenerator"),
    llmClient:   llmClient,
    analyser:    analyser,
    profileRepo: profileRepo,
    planRepo:    planRepo,
    historyRepo: historyRepo,
    now:         func() time.Time { return time.Now().UTC() },
  }
}

func (s *generatorService) Generate(ctx context.Context, teacherID uuid.UUID, focusAreas []string) (*types.GrowthPlan, error) {
  profile, err := s.profileRepo.GetByTeacherID(ctx, nil, teacherID)
  if err != nil {
    return nil, err
  }
  if profile == nil {
    return nil, apperr.New(apperr.KindProfileMissing, "complete your teacher profile to generate a growth plan")
  }

  summary, err := s.analyser.Summary(ctx, teacherID)
  if err != nil {
    return nil, err
  }
  weakModules := weakestModules(summary, 3)
  weakTypes := weakestTypes(summary, 2)

  genCtx := generationContext{
    OverallScore: summary.Overall,
    WeakModules:  weakModules,
    WeakTypes:    weakTypes,
    FocusAreas:   focusAreas,
  }

  prompt := planPrompt(profile, summary, weakModules, weakTypes, focusAreas)
  content, err := s.llmClient.GenerateText(ctx, prompt, &llm.CallOptions{
    Timeout:   llm.GenerationTimeout,
    MaxTokens: 4000,
  })
  if err != nil || len(content) < minPlanLength {
    if err != nil {
      s.log.Warn("Plan generation failed, using template", "error", err, "teacher_id", teacherID)
    } else {
      s.log.Warn("Plan output too short, using template", "length", len(content), "teacher_id", teacherID)
    }
    content = templatePlan(profile, summary, weakModules)
    genCtx.Fallback = true
  }

  contextJSON, err := json.Marshal(genCtx)
  if err != nil {
    return nil, err
  }

  now := s.now()
  var plan *types.GrowthPlan
  txErr := s.db.Transaction(func(tx *gorm.DB) error {
    prior, err := s.planRepo.GetActive(ctx, tx, teacherID)
    if err != nil {
      return err
    }
    version := 1
    if prior != nil {
      version = prior.Version + 1
    }
    if err := s.planRepo.DeactivateActive(ctx, tx, teacherID); err != nil {
      return err
    }

    plan = &types.GrowthPlan{
      ID:               uuid.New(),
      TeacherID:        teacherID,
      Content:          content,
      GeneratedContext: datatypes.JSON(contextJSON),
      Version:          version,
      IsActive:         true,
      GeneratedAt:      now,
      ExpiresAt:        now.Add(planValidity),
    }
    _, err = s.planRepo.Create(ctx, tx, plan)
    return err
  })
  if txErr != nil {
    return nil, txErr
  }
  return plan, nil
}

func (s *generatorService) GetActive(ctx context.Context, teacherID uuid.UUID) (*types.GrowthPlan, error) {
  return s.planRepo.GetActive(ctx, nil, teacherID)
}

// CheckRegeneration reports whether a fresh plan is recommended: the
// active plan expired, the overall score moved by 10 or more points, or
// at least two attempts completed since generation.
func (s *generatorService) CheckRegeneration(ctx context.Context, teacherID uuid.UUID) (*RegenerationCheck, error) {
  active, err := s.planRepo.GetActive(ctx, nil, teacherID)
  if err != nil {
    return nil, err
  }
  if active == nil {
    return &RegenerationCheck{Recommended: true, Reason: "no active plan"}, nil
  }

  now := s.now()
  if now.After(active.ExpiresAt) {
    return &RegenerationCheck{Recommended: true, Reason: "active plan expired"}, nil
  }

  var genCtx generationContext
  if len(active.GeneratedContext) > 0 {
    if err := json.Unmarshal(active.GeneratedContext, &genCtx); err != nil {
      s.log.Warn("Unreadable generation context", "error", err, "plan_id", active.ID)
    }
  }

  summary, err := s.analyser.Summary(ctx, teacherID)
  if err != nil {
    return nil, err
  }
  if math.Abs(summary.Overall-genCtx.OverallScore) >= regenScoreDelta {
    return &RegenerationCheck{
      Recommended: true,
      Reason:      fmt.Sprintf("overall score moved from %.1f to %.1f", genCtx.OverallScore, summary.Overall),
    }, nil
  }

  attempts, err := s.historyRepo.CountSince(ctx, nil, teacherID, active.GeneratedAt)
  if err != nil {
    return nil, err
  }
  if attempts >= regenAttemptCount {
    return &RegenerationCheck{
      Recommended: true,
      Reason:      fmt.Sprintf("%d attempts completed since the plan was generated", attempts),
    }, nil
  }

  return &RegenerationCheck{}, nil
}

func weakestModules(summary *analysis.TeacherSummary, max int) []string {
  modules := make([]analysis.ModuleScore, len(summary.Modules))
  copy(modules, summary.Modules)
  sort.SliceStable(modules, func(i, j int) bool {
    return modules[i].Score < modules[j].Score
  })
  var names []string
  for i := 0; i < len(modules) && i < max; i++ {
    names = append(names, modules[i].ModuleName)
  }
  return names
}

func weakestTypes(summary *analysis.TeacherSummary, max int) []string {
  type typeMean struct {
    name string
    mean float64
  }
  var means []typeMean
  for name, mean := range summary.TypeMeans {
    means = append(means, typeMean{name: name, mean: mean})
  }
  sort.SliceStable(means, func(i, j int) bool {
    if means[i].mean != means[j].mean {
      return means[i].mean < means[j].mean
    }
    return means[i].name < means[j].name
  })
  var names []string
  for i := 0; i < len(means) && i < max; i++ {
    names = append(names, means[i].name)
  }
  return names
}

func planPrompt(profile *types.TeacherProfile, summary *analysis.TeacherSummary, weakModules, weakTypes, focusAreas []string) string {
  var b strings.Builder
  fmt.Fprintf(&b, "Create a 30-day professional growth plan in markdown for an Indian school teacher.\n\n")
  fmt.Fprintf(&b, "Teacher context:\n")
  fmt.Fprintf(&b, "- Subjects: %s\n", profile.SubjectsTaught)
  fmt.Fprintf(&b, "- Grades: %s\n", profile.GradesTaught)
  fmt.Fprintf(&b, "- Board: %s (%s)\n", profile.Board, profile.State)
  fmt.Fprintf(&b, "- Overall score: %.1f%%\n", summary.Overall)
  fmt.Fprintf(&b, "- Weakest modules: %s\n", strings.Join(weakModules, ", "))
  fmt.Fprintf(&b, "- Weakest assessment types: %s\n", strings.Join(weakTypes, ", "))
  if len(focusAreas) > 0 {
    fmt.Fprintf(&b, "- Requested focus areas: %s\n", strings.Join(focusAreas, ", "))
  }
  b.WriteString("\nThe plan MUST follow this exact structure:\n")
  b.WriteString("- An executive summary paragraph.\n")
  for _, section := range weeklySections {
    fmt.Fprintf(&b, "- A \"## %s\" section with one bullet per day (Day 1: ... through Day 7: ...).\n", section)
  }
  b.WriteString("- A \"## Free Resources\" list of no-cost Indian teacher resources.\n")
  b.WriteString("- A \"## Board-Specific Strategies\" section tailored to the board above.\n")
  b.WriteString("- A \"## Success Metrics\" section with measurable 30-day targets.\n")
  b.WriteString("\nReturn markdown only, no preamble.\n")
  return b.String()
}

// templatePlan is the deterministic fallback. It substitutes the
// teacher's context into fixed slots and always clears the length floor.
func templatePlan(profile *types.TeacherProfile, summary *analysis.TeacherSummary, weakModules []string) string {
  subject := profile.SubjectsTaught
  if subject == "" {
    subject = "your subject"
  }
  focus := strings.Join(weakModules, ", ")
  if focus == "" {
    focus = "core teaching skills"
  }

  var b strings.Builder
  fmt.Fprintf(&b, "# 30-Day Growth Plan\n\n")
  fmt.Fprintf(&b, "This plan targets %s for a %s teacher (grades %s, %s board), starting from an overall score of %.0f%%. Each week builds on the last; spend 30-45 minutes per day.\n\n",
    focus, subject, profile.GradesTaught, profile.Board, summary.Overall)

  days := [4][3]string{
    {"Take a diagnostic self-assessment in " + focus, "List the three topics you avoid teaching and why", "Collect your board's syllabus documents for " + subject},
    {"Watch one DIKSHA module on your weakest topic", "Summarise what you learned in a teaching journal", "Practise explaining the topic aloud in under five minutes"},
    {"Apply one new technique in an actual class", "Note what worked and what confused students", "Adjust the technique and repeat with another class"},
    {"Retake an assessment in your weakest module", "Compare scores and update your journal", "Pick the next focus area for the coming month"},
  }
  for week, section := range weeklySections {
    fmt.Fprintf(&b, "## %s\n\n", section)
    for day := 1; day <= 7; day++ {
      fmt.Fprintf(&b, "- Day %d: %s\n", day, days[week][(day-1)%3])
    }
    b.WriteString("\n")
  }

  b.WriteString("## Free Resources\n\n")
  b.WriteString("- DIKSHA (diksha.gov.in): board-aligned courses and teaching material\n")
  b.WriteString("- SWAYAM (swayam.gov.in): university-level subject refreshers\n")
  b.WriteString("- NISHTHA (itpd.ncert.gov.in): NCERT's integrated teacher training\n\n")

  fmt.Fprintf(&b, "## Board-Specific Strategies\n\n")
  fmt.Fprintf(&b, "- Map every lesson to the %s syllabus outcomes before teaching it\n", profile.Board)
  fmt.Fprintf(&b, "- Use previous years' %s question papers as practice anchors\n\n", profile.Board)

  b.WriteString("## Success Metrics\n\n")
  fmt.Fprintf(&b, "- Raise your overall score from %.0f%% by at least 10 points\n", summary.Overall)
  b.WriteString("- Complete at least two module assessments this month\n")
  b.WriteString("- Apply one new classroom technique per week\n")
  return b.String()
}
