package analysis

import (
  "context"
  "fmt"
  "math"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

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
    &types.Module{},
    &types.Performance{},
    &types.PerformanceHistory{},
  ); err != nil {
    t.Fatalf("migrate: %v", err)
  }
  return db
}

type analyserFixture struct {
  db      *gorm.DB
  svc     Service
  teacher uuid.UUID
}

func newAnalyserFixture(t *testing.T) *analyserFixture {
  t.Helper()
  db := openTestDB(t)
  log := logger.NewNop()

  modules := []*types.Module{
    {ID: 1, Name: "Subject Knowledge", Category: types.CategoryKnowledge, AssessmentType: types.AssessmentTypeMCQ, TimeLimitMinutes: 30, CooldownHours: 24, MaxAttemptsPerMonth: 3},
    {ID: 2, Name: "Pedagogical Skills", Category: types.CategoryKnowledge, AssessmentType: types.AssessmentTypeMCQ, TimeLimitMinutes: 30, CooldownHours: 24, MaxAttemptsPerMonth: 3},
    {ID: 3, Name: "Innovative Practices", Category: types.CategoryPortfolio, AssessmentType: types.AssessmentTypeSubmission, MaxAttemptsPerMonth: 1},
    {ID: 4, Name: "Student Outcomes", Category: types.CategoryOutcomes, AssessmentType: types.AssessmentTypeOutcome, MaxAttemptsPerMonth: 1},
  }
  for _, m := range modules {
    if err := db.Create(m).Error; err != nil {
      t.Fatalf("seed module: %v", err)
    }
  }

  svc := NewService(
    db, log, nil,
    repos.NewPerformanceRepo(db, log),
    repos.NewPerformanceHistoryRepo(db, log),
    repos.NewTeacherProfileRepo(db, log),
    repos.NewModuleRepo(db, log),
  )
  return &analyserFixture{db: db, svc: svc, teacher: uuid.New()}
}

func (f *analyserFixture) seedProfile(t *testing.T, teacherID uuid.UUID, board string) {
  t.Helper()
  profile := &types.TeacherProfile{ID: uuid.New(), TeacherID: teacherID, Board: board, GradesTaught: "7", SubjectsTaught: "maths"}
  if err := f.db.Create(profile).Error; err != nil {
    t.Fatalf("seed profile: %v", err)
  }
}

func (f *analyserFixture) seedPerformance(t *testing.T, teacherID uuid.UUID, moduleID int, score float64) {
  t.Helper()
  row := &types.Performance{ID: uuid.New(), TeacherID: teacherID, ModuleID: moduleID, Score: score, Rating: Rating(score)}
  if err := f.db.Create(row).Error; err != nil {
    t.Fatalf("seed performance: %v", err)
  }
}

func (f *analyserFixture) seedHistory(t *testing.T, teacherID uuid.UUID, moduleID int, scores ...float64) {
  t.Helper()
  base := time.Now().UTC().Add(-time.Duration(len(scores)) * time.Hour)
  for i, score := range scores {
    row := &types.PerformanceHistory{
      ID:        uuid.New(),
      TeacherID: teacherID,
      ModuleID:  moduleID,
      Score:     score,
      Rating:    Rating(score),
      CreatedAt: base.Add(time.Duration(i) * time.Hour),
    }
    if err := f.db.Create(row).Error; err != nil {
      t.Fatalf("seed history: %v", err)
    }
  }
}

func almostEqual(a, b float64) bool {
  return math.Abs(a-b) < 0.01
}

func TestSummaryWeightsAssessmentTypes(t *testing.T) {
  f := newAnalyserFixture(t)
  f.seedProfile(t, f.teacher, "CBSE")
  f.seedPerformance(t, f.teacher, 1, 80) // mcq
  f.seedPerformance(t, f.teacher, 2, 60) // mcq
  f.seedPerformance(t, f.teacher, 3, 90) // submission
  f.seedPerformance(t, f.teacher, 4, 50) // outcome

  summary, err := f.svc.Summary(context.Background(), f.teacher)
  if err != nil {
    t.Fatalf("Summary: %v", err)
  }

  if !almostEqual(summary.TypeMeans[types.AssessmentTypeMCQ], 70) {
    t.Fatalf("mcq mean = %v, want 70", summary.TypeMeans[types.AssessmentTypeMCQ])
  }
  // (0.5*70 + 0.3*90 + 0.2*50) / 1.0 = 72
  if !almostEqual(summary.Overall, 72) {
    t.Fatalf("overall = %v, want 72", summary.Overall)
  }
  if summary.Rating != RatingGood {
    t.Fatalf("rating = %q, want %q", summary.Rating, RatingGood)
  }
  if len(summary.Modules) != 4 {
    t.Fatalf("modules = %d, want 4", len(summary.Modules))
  }
}

func TestSummaryRenormalisesMissingTypes(t *testing.T) {
  f := newAnalyserFixture(t)
  f.seedProfile(t, f.teacher, "CBSE")
  f.seedPerformance(t, f.teacher, 1, 88)

  summary, err := f.svc.Summary(context.Background(), f.teacher)
  if err != nil {
    t.Fatalf("Summary: %v", err)
  }
  // Only mcq present: overall = 0.5*88 / 0.5.
  if !almostEqual(summary.Overall, 88) {
    t.Fatalf("overall = %v, want 88", summary.Overall)
  }
  if summary.Rating != RatingExcellent {
    t.Fatalf("rating = %q", summary.Rating)
  }
}

func TestSummaryCohortPercentile(t *testing.T) {
  f := newAnalyserFixture(t)
  f.seedProfile(t, f.teacher, "TSBSE")
  f.seedPerformance(t, f.teacher, 1, 70)

  low, high := uuid.New(), uuid.New()
  f.seedProfile(t, low, "TSBSE")
  f.seedPerformance(t, low, 1, 40)
  f.seedProfile(t, high, "TSBSE")
  f.seedPerformance(t, high, 1, 95)

  // A teacher on a different board must not count.
  outsider := uuid.New()
  f.seedProfile(t, outsider, "CBSE")
  f.seedPerformance(t, outsider, 1, 99)

  summary, err := f.svc.Summary(context.Background(), f.teacher)
  if err != nil {
    t.Fatalf("Summary: %v", err)
  }
  if summary.CohortSize != 3 {
    t.Fatalf("cohort size = %d, want 3", summary.CohortSize)
  }
  // Two of three cohort means are <= 70.
  if !almostEqual(summary.Percentile, 66.67) {
    t.Fatalf("percentile = %v, want ~66.67", summary.Percentile)
  }
}

func TestModuleTrendsDeclining(t *testing.T) {
  f := newAnalyserFixture(t)
  f.seedPerformance(t, f.teacher, 1, 45)
  f.seedHistory(t, f.teacher, 1, 60, 55, 45)

  trends, err := f.svc.ModuleTrends(context.Background(), f.teacher)
  if err != nil {
    t.Fatalf("ModuleTrends: %v", err)
  }
  if len(trends) != 1 {
    t.Fatalf("trends = %d, want 1", len(trends))
  }
  tr := trends[0]
  if tr.CurrentScore != 45 || tr.PreviousScore != 55 {
    t.Fatalf("current/previous = %v/%v, want 45/55", tr.CurrentScore, tr.PreviousScore)
  }
  if !almostEqual(tr.ChangePct, -18.18) {
    t.Fatalf("change pct = %v, want ~-18.18", tr.ChangePct)
  }
  if tr.Trend != TrendDeclined || tr.Priority != PriorityUrgent || tr.RecommendedDifficulty != DifficultyBeginner {
    t.Fatalf("classification = %+v", tr)
  }
}

func TestModuleTrendsSingleAttemptIsStagnant(t *testing.T) {
  f := newAnalyserFixture(t)
  f.seedPerformance(t, f.teacher, 1, 75)
  f.seedHistory(t, f.teacher, 1, 75)

  trends, err := f.svc.ModuleTrends(context.Background(), f.teacher)
  if err != nil {
    t.Fatalf("ModuleTrends: %v", err)
  }
  tr := trends[0]
  if tr.Trend != TrendStagnant || tr.ChangePct != 0 {
    t.Fatalf("single-entry history should be stagnant, got %+v", tr)
  }
}

func TestModuleTrendsNoHistoryIsNew(t *testing.T) {
  f := newAnalyserFixture(t)
  f.seedPerformance(t, f.teacher, 2, 65)

  trends, err := f.svc.ModuleTrends(context.Background(), f.teacher)
  if err != nil {
    t.Fatalf("ModuleTrends: %v", err)
  }
  tr := trends[0]
  if tr.Trend != TrendNew {
    t.Fatalf("trend = %q, want new", tr.Trend)
  }
  if tr.CurrentScore != 65 {
    t.Fatalf("current = %v, want the performance score", tr.CurrentScore)
  }
}

func TestPriorityAreasOrderingAndCap(t *testing.T) {
  f := newAnalyserFixture(t)
  // Module 1: declining and failing -> urgent.
  f.seedPerformance(t, f.teacher, 1, 45)
  f.seedHistory(t, f.teacher, 1, 60, 45)
  // Module 2: stagnant midrange -> high.
  f.seedPerformance(t, f.teacher, 2, 65)
  f.seedHistory(t, f.teacher, 2, 64, 65)
  // Module 3: strong -> low.
  f.seedPerformance(t, f.teacher, 3, 90)
  f.seedHistory(t, f.teacher, 3, 88, 90)

  areas, err := f.svc.PriorityAreas(context.Background(), f.teacher, 2)
  if err != nil {
    t.Fatalf("PriorityAreas: %v", err)
  }
  if len(areas) != 2 {
    t.Fatalf("areas = %d, want 2", len(areas))
  }
  if areas[0].ModuleID != 1 || areas[0].Priority != PriorityUrgent {
    t.Fatalf("first area = %+v, want module 1 urgent", areas[0])
  }
  if areas[1].ModuleID != 2 || areas[1].Priority != PriorityHigh {
    t.Fatalf("second area = %+v, want module 2 high", areas[1])
  }
}
