package growthplan

import (
  "context"
  "errors"
  "fmt"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/analysis"
  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
  "github.com/shikshaloop/shikshaloop-backend/internal/llm"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
  db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
  if err != nil {
    t.Fatalf("open sqlite: %v", err)
  }
  sqlDB, err := db.DB()
  if err != nil {
    t.Fatalf("db handle: %v", err)
  }
  sqlDB.SetMaxOpenConns(1)
  if err := db.AutoMigrate(
    &types.TeacherProfile{},
    &types.GrowthPlan{},
    &types.PerformanceHistory{},
  ); err != nil {
    t.Fatalf("migrate: %v", err)
  }
  return db
}

type stubAnalyser struct {
  summary *analysis.TeacherSummary
}

func (a *stubAnalyser) Summary(ctx context.Context, teacherID uuid.UUID) (*analysis.TeacherSummary, error) {
  return a.summary, nil
}

func (a *stubAnalyser) ModuleTrends(ctx context.Context, teacherID uuid.UUID) ([]*analysis.ModuleTrend, error) {
  return nil, errors.New("not implemented")
}

func (a *stubAnalyser) PriorityAreas(ctx context.Context, teacherID uuid.UUID, max int) ([]*analysis.ModuleTrend, error) {
  return nil, errors.New("not implemented")
}

type stubLLM struct {
  text string
  err  error
}

func (c *stubLLM) GenerateText(ctx context.Context, prompt string, opts *llm.CallOptions) (string, error) {
  return c.text, c.err
}

func (c *stubLLM) GenerateJSONArray(ctx context.Context, prompt string, opts *llm.CallOptions) ([]map[string]interface{}, error) {
  return nil, errors.New("not implemented")
}

func (c *stubLLM) GenerateObject(ctx context.Context, prompt string, opts *llm.CallOptions) (map[string]interface{}, error) {
  return nil, errors.New("not implemented")
}

type fixture struct {
  db      *gorm.DB
  svc     *generatorService
  teacher uuid.UUID
}

func newFixture(t *testing.T, llmStub llm.Client) *fixture {
  t.Helper()
  db := openTestDB(t)
  log := logger.NewNop()

  teacher := uuid.New()
  profile := &types.TeacherProfile{
    ID:             uuid.New(),
    TeacherID:      teacher,
    GradesTaught:   "7-9",
    SubjectsTaught: "maths",
    Board:          "CBSE",
    State:          "Telangana",
  }
  if err := db.Create(profile).Error; err != nil {
    t.Fatalf("seed profile: %v", err)
  }

  summary := &analysis.TeacherSummary{
    TeacherID: teacher,
    Overall:   62,
    Rating:    analysis.RatingGood,
    TypeMeans: map[string]float64{
      types.AssessmentTypeMCQ:        58,
      types.AssessmentTypeSubmission: 70,
      types.AssessmentTypeOutcome:    65,
    },
    Modules: []analysis.ModuleScore{
      {ModuleID: 1, ModuleName: "Subject Knowledge", Score: 55},
      {ModuleID: 2, ModuleName: "Pedagogical Skills", Score: 48},
      {ModuleID: 3, ModuleName: "Classroom Management", Score: 71},
      {ModuleID: 4, ModuleName: "Technology Integration", Score: 80},
    },
  }

  svc := NewGenerator(
    db, log, llmStub,
    &stubAnalyser{summary: summary},
    repos.NewTeacherProfileRepo(db, log),
    repos.NewGrowthPlanRepo(db, log),
    repos.NewPerformanceHistoryRepo(db, log),
  ).(*generatorService)

  return &fixture{db: db, svc: svc, teacher: teacher}
}

func longPlan() string {
  return "# Growth Plan\n\n" + strings.Repeat("Work through the weakest module one day at a time. ", 20)
}

func TestGeneratePersistsModelOutput(t *testing.T) {
  f := newFixture(t, &stubLLM{text: longPlan()})

  plan, err := f.svc.Generate(context.Background(), f.teacher, nil)
  if err != nil {
    t.Fatalf("Generate: %v", err)
  }
  if plan.Version != 1 || !plan.IsActive {
    t.Fatalf("plan = %+v", plan)
  }
  if !strings.HasPrefix(plan.Content, "# Growth Plan") {
    t.Fatalf("model output should be kept, got %q", plan.Content[:40])
  }
  if want := plan.GeneratedAt.Add(30 * 24 * time.Hour); !plan.ExpiresAt.Equal(want) {
    t.Fatalf("expires at %v, want %v", plan.ExpiresAt, want)
  }
  if !strings.Contains(string(plan.GeneratedContext), "Pedagogical Skills") {
    t.Fatalf("context should carry weak modules: %s", plan.GeneratedContext)
  }
}

func TestGenerateFallsBackOnShortOutput(t *testing.T) {
  filler := strings.Repeat("x", minPlanLength-1)
  f := newFixture(t, &stubLLM{text: filler})

  plan, err := f.svc.Generate(context.Background(), f.teacher, nil)
  if err != nil {
    t.Fatalf("Generate: %v", err)
  }
  if !strings.Contains(plan.Content, "30-Day Growth Plan") {
    t.Fatal("short output should trigger the template")
  }
  if !strings.Contains(string(plan.GeneratedContext), `"fallback":true`) {
    t.Fatalf("fallback flag missing: %s", plan.GeneratedContext)
  }
  for _, section := range weeklySections {
    if !strings.Contains(plan.Content, section) {
      t.Fatalf("template missing section %q", section)
    }
  }
}

func TestGenerateKeepsOutputAtLengthFloor(t *testing.T) {
  exact := strings.Repeat("y", minPlanLength)
  f := newFixture(t, &stubLLM{text: exact})

  plan, err := f.svc.Generate(context.Background(), f.teacher, nil)
  if err != nil {
    t.Fatalf("Generate: %v", err)
  }
  if plan.Content != exact {
    t.Fatal("output exactly at the floor should be kept")
  }
}

func TestGenerateFallsBackOnError(t *testing.T) {
  f := newFixture(t, &stubLLM{err: apperr.New(apperr.KindTimeout, "deadline exceeded")})

  plan, err := f.svc.Generate(context.Background(), f.teacher, nil)
  if err != nil {
    t.Fatalf("Generate should fall back, not fail: %v", err)
  }
  if !strings.Contains(plan.Content, "30-Day Growth Plan") {
    t.Fatal("error should trigger the template")
  }
}

func TestGenerateDeactivatesPrior(t *testing.T) {
  f := newFixture(t, &stubLLM{text: longPlan()})

  first, err := f.svc.Generate(context.Background(), f.teacher, nil)
  if err != nil {
    t.Fatalf("first: %v", err)
  }
  second, err := f.svc.Generate(context.Background(), f.teacher, []string{"questioning techniques"})
  if err != nil {
    t.Fatalf("second: %v", err)
  }
  if second.Version != 2 {
    t.Fatalf("version = %d, want 2", second.Version)
  }

  var active []types.GrowthPlan
  if err := f.db.Where("teacher_id = ? AND is_active = ?", f.teacher, true).Find(&active).Error; err != nil {
    t.Fatalf("load plans: %v", err)
  }
  if len(active) != 1 || active[0].ID != second.ID {
    t.Fatalf("exactly the new plan should be active, got %d rows", len(active))
  }
  if first.ID == second.ID {
    t.Fatal("plans should be distinct rows")
  }
}

func TestGenerateWithoutProfile(t *testing.T) {
  f := newFixture(t, &stubLLM{text: longPlan()})
  _, err := f.svc.Generate(context.Background(), uuid.New(), nil)
  if !apperr.IsKind(err, apperr.KindProfileMissing) {
    t.Fatalf("expected profile_missing, got %v", err)
  }
}

func TestCheckRegeneration(t *testing.T) {
  f := newFixture(t, &stubLLM{text: longPlan()})
  ctx := context.Background()

  check, err := f.svc.CheckRegeneration(ctx, f.teacher)
  if err != nil {
    t.Fatalf("CheckRegeneration: %v", err)
  }
  if !check.Recommended {
    t.Fatal("no active plan should recommend generation")
  }

  if _, err := f.svc.Generate(ctx, f.teacher, nil); err != nil {
    t.Fatalf("Generate: %v", err)
  }

  check, err = f.svc.CheckRegeneration(ctx, f.teacher)
  if err != nil {
    t.Fatalf("CheckRegeneration: %v", err)
  }
  if check.Recommended {
    t.Fatalf("fresh plan should not need regeneration: %+v", check)
  }

  // Expiry.
  f.svc.now = func() time.Time { return time.Now().UTC().Add(31 * 24 * time.Hour) }
  check, err = f.svc.CheckRegeneration(ctx, f.teacher)
  if err != nil {
    t.Fatalf("CheckRegeneration: %v", err)
  }
  if !check.Recommended || !strings.Contains(check.Reason, "expired") {
    t.Fatalf("expired plan should recommend regeneration: %+v", check)
  }
  f.svc.now = func() time.Time { return time.Now().UTC() }

  // Score movement.
  f.svc.analyser.(*stubAnalyser).summary.Overall = 73
  check, err = f.svc.CheckRegeneration(ctx, f.teacher)
  if err != nil {
    t.Fatalf("CheckRegeneration: %v", err)
  }
  if !check.Recommended || !strings.Contains(check.Reason, "score moved") {
    t.Fatalf("score delta >= 10 should recommend regeneration: %+v", check)
  }
  f.svc.analyser.(*stubAnalyser).summary.Overall = 62

  // New attempts since generation.
  for i := 0; i < 2; i++ {
    row := &types.PerformanceHistory{
      ID:        uuid.New(),
      TeacherID: f.teacher,
      ModuleID:  1,
      Score:     60,
      Rating:    analysis.RatingGood,
      CreatedAt: time.Now().UTC().Add(time.Duration(i+1) * time.Minute),
    }
    if err := f.db.Create(row).Error; err != nil {
      t.Fatalf("seed history: %v", err)
    }
  }
  check, err = f.svc.CheckRegeneration(ctx, f.teacher)
  if err != nil {
    t.Fatalf("CheckRegeneration: %v", err)
  }
  if !check.Recommended || !strings.Contains(check.Reason, "attempts") {
    t.Fatalf("two new attempts should recommend regeneration: %+v", check)
  }
}
