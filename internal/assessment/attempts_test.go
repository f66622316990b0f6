package assessment

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
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
    &types.AssessmentQuestion{},
    &types.AssessmentResponse{},
    &types.AttemptLimit{},
    &types.AssessmentSession{},
    &types.AttemptSummary{},
    &types.Performance{},
    &types.PerformanceHistory{},
  ); err != nil {
    t.Fatalf("migrate: %v", err)
  }
  return db
}

type attemptFixture struct {
  db      *gorm.DB
  svc     *attemptService
  teacher uuid.UUID
  module  *types.Module
}

// stubGenerator writes deterministic questions straight through the
// question repo, standing in for the LLM-backed generator.
type stubGenerator struct {
  questionRepo repos.QuestionRepo
  failWith     error
}

func (g *stubGenerator) GenerateQuestions(ctx context.Context, tx *gorm.DB, profile *types.TeacherProfile, module *types.Module, count int, difficulty string) ([]*types.AssessmentQuestion, error) {
  if g.failWith != nil {
    return nil, g.failWith
  }
  options, _ := json.Marshal([]string{"One", "Two", "Three", "Four"})
  questions := make([]*types.AssessmentQuestion, 0, count)
  for i := 0; i < count; i++ {
    questions = append(questions, &types.AssessmentQuestion{
      ID:            uuid.New(),
      TeacherID:     profile.TeacherID,
      ModuleID:      module.ID,
      Prompt:        fmt.Sprintf("Question %d", i+1),
      Topic:         fmt.Sprintf("Topic %d", i+1),
      Options:       datatypes.JSON(options),
      CorrectAnswer: "B",
      CreatedAt:     time.Now().UTC(),
    })
  }
  return g.questionRepo.Create(ctx, tx, questions)
}

func newAttemptFixture(t *testing.T) *attemptFixture {
  t.Helper()
  db := openTestDB(t)
  log := logger.NewNop()

  module := &types.Module{
    ID:                  1,
    Name:                "Pedagogical Skills",
    Category:            types.CategoryKnowledge,
    AssessmentType:      types.AssessmentTypeMCQ,
    TimeLimitMinutes:    30,
    CooldownHours:       24,
    MaxAttemptsPerMonth: 3,
  }
  if err := db.Create(module).Error; err != nil {
    t.Fatalf("seed module: %v", err)
  }

  teacher := uuid.New()
  profile := &types.TeacherProfile{
    ID:             uuid.New(),
    TeacherID:      teacher,
    GradesTaught:   "7-9",
    SubjectsTaught: "maths",
    Board:          "CBSE",
  }
  if err := db.Create(profile).Error; err != nil {
    t.Fatalf("seed profile: %v", err)
  }

  questionRepo := repos.NewQuestionRepo(db, log)
  svc := NewAttemptService(
    db, log,
    repos.NewModuleRepo(db, log),
    repos.NewAttemptLimitRepo(db, log),
    repos.NewSessionRepo(db, log),
    repos.NewAttemptSummaryRepo(db, log),
    repos.NewTeacherProfileRepo(db, log),
    repos.NewPerformanceRepo(db, log),
    &stubGenerator{questionRepo: questionRepo},
  ).(*attemptService)

  return &attemptFixture{db: db, svc: svc, teacher: teacher, module: module}
}

func (f *attemptFixture) setNow(now time.Time) {
  f.svc.now = func() time.Time { return now }
}

func TestCheckEligibilityFreshTeacher(t *testing.T) {
  f := newAttemptFixture(t)
  result, err := f.svc.CheckEligibility(context.Background(), f.teacher, f.module.ID)
  if err != nil {
    t.Fatalf("CheckEligibility: %v", err)
  }
  if !result.Eligible {
    t.Fatalf("fresh teacher should be eligible, got %+v", result)
  }
  if result.MaxAttempts != 3 || result.AttemptsUsed != 0 {
    t.Fatalf("limit defaults wrong: %+v", result)
  }
}

func TestCheckEligibilityUnknownModule(t *testing.T) {
  f := newAttemptFixture(t)
  _, err := f.svc.CheckEligibility(context.Background(), f.teacher, 999)
  if !apperr.IsKind(err, apperr.KindModuleNotFound) {
    t.Fatalf("expected module_not_found, got %v", err)
  }
}

func TestStartSessionHappyPath(t *testing.T) {
  f := newAttemptFixture(t)
  now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
  f.setNow(now)

  result, err := f.svc.StartSession(context.Background(), f.teacher, f.module.ID, "medium", 5)
  if err != nil {
    t.Fatalf("StartSession: %v", err)
  }
  if result.AttemptNumber != 1 {
    t.Fatalf("attempt number = %d, want 1", result.AttemptNumber)
  }
  if len(result.Questions) != 5 {
    t.Fatalf("questions = %d, want 5", len(result.Questions))
  }
  wantExpiry := now.Add(30 * time.Minute)
  if !result.ExpiresAt.Equal(wantExpiry) {
    t.Fatalf("expires at %v, want %v", result.ExpiresAt, wantExpiry)
  }

  var limit types.AttemptLimit
  if err := f.db.Where("teacher_id = ? AND module_id = ?", f.teacher, f.module.ID).First(&limit).Error; err != nil {
    t.Fatalf("load limit: %v", err)
  }
  if limit.AttemptsUsed != 1 {
    t.Fatalf("attempts used = %d, want 1", limit.AttemptsUsed)
  }
  if limit.NextAttemptAvailable == nil || !limit.NextAttemptAvailable.Equal(now.Add(24*time.Hour)) {
    t.Fatalf("next attempt available = %v", limit.NextAttemptAvailable)
  }
}

func TestStartSessionCooldownBoundary(t *testing.T) {
  f := newAttemptFixture(t)
  start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
  f.setNow(start)
  if _, err := f.svc.StartSession(context.Background(), f.teacher, f.module.ID, "medium", 2); err != nil {
    t.Fatalf("first start: %v", err)
  }

  next := start.Add(24 * time.Hour)

  f.setNow(next.Add(-time.Nanosecond))
  _, err := f.svc.StartSession(context.Background(), f.teacher, f.module.ID, "medium", 2)
  if !apperr.IsKind(err, apperr.KindCooldownPeriod) {
    t.Fatalf("one nanosecond early should hit cooldown, got %v", err)
  }

  f.setNow(next)
  if _, err := f.svc.StartSession(context.Background(), f.teacher, f.module.ID, "medium", 2); err != nil {
    t.Fatalf("start exactly at next-attempt-available should succeed: %v", err)
  }
}

func TestStartSessionMonthlyLimit(t *testing.T) {
  f := newAttemptFixture(t)
  base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
  for i := 0; i < 3; i++ {
    f.setNow(base.Add(time.Duration(i) * 25 * time.Hour))
    if _, err := f.svc.StartSession(context.Background(), f.teacher, f.module.ID, "medium", 2); err != nil {
      t.Fatalf("attempt %d: %v", i+1, err)
    }
  }

  f.setNow(base.Add(4 * 25 * time.Hour))
  _, err := f.svc.StartSession(context.Background(), f.teacher, f.module.ID, "medium", 2)
  if !apperr.IsKind(err, apperr.KindMonthlyLimitReached) {
    t.Fatalf("expected monthly_limit_reached, got %v", err)
  }
  var ae *apperr.Error
  if !errors.As(err, &ae) || ae.DaysUntilReset <= 0 {
    t.Fatalf("veto should carry days until reset, got %+v", ae)
  }

  // A new calendar month gets a fresh limit row.
  f.setNow(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
  if _, err := f.svc.StartSession(context.Background(), f.teacher, f.module.ID, "medium", 2); err != nil {
    t.Fatalf("new month should reset the cap: %v", err)
  }
}

func TestStartSessionDeactivatesPrior(t *testing.T) {
  f := newAttemptFixture(t)
  start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
  f.setNow(start)
  first, err := f.svc.StartSession(context.Background(), f.teacher, f.module.ID, "medium", 2)
  if err != nil {
    t.Fatalf("first start: %v", err)
  }

  f.setNow(start.Add(25 * time.Hour))
  second, err := f.svc.StartSession(context.Background(), f.teacher, f.module.ID, "medium", 2)
  if err != nil {
    t.Fatalf("second start: %v", err)
  }
  if second.AttemptNumber != 1 {
    // Attempt numbers come from completed attempts, not started sessions.
    t.Fatalf("attempt number = %d, want 1", second.AttemptNumber)
  }

  var active []types.AssessmentSession
  if err := f.db.Where("teacher_id = ? AND module_id = ? AND is_active = ?", f.teacher, f.module.ID, true).Find(&active).Error; err != nil {
    t.Fatalf("load sessions: %v", err)
  }
  if len(active) != 1 || active[0].ID != second.SessionID {
    t.Fatalf("exactly the new session should be active, got %d rows", len(active))
  }
  if first.SessionID == second.SessionID {
    t.Fatal("sessions should be distinct")
  }
}

func TestStartSessionWithoutProfile(t *testing.T) {
  f := newAttemptFixture(t)
  stranger := uuid.New()
  _, err := f.svc.StartSession(context.Background(), stranger, f.module.ID, "medium", 2)
  if !apperr.IsKind(err, apperr.KindProfileMissing) {
    t.Fatalf("expected profile_missing, got %v", err)
  }
}

func TestStartSessionGeneratorFailureRollsBack(t *testing.T) {
  f := newAttemptFixture(t)
  f.svc.generator = &stubGenerator{failWith: apperr.New(apperr.KindGenerationShortfall, "no usable items")}

  _, err := f.svc.StartSession(context.Background(), f.teacher, f.module.ID, "medium", 2)
  if !apperr.IsKind(err, apperr.KindGenerationShortfall) {
    t.Fatalf("expected generation_shortfall, got %v", err)
  }

  var limit types.AttemptLimit
  err = f.db.Where("teacher_id = ? AND module_id = ?", f.teacher, f.module.ID).First(&limit).Error
  if err == nil && limit.AttemptsUsed != 0 {
    t.Fatalf("failed generation must not consume an attempt, used = %d", limit.AttemptsUsed)
  }

  var sessions int64
  f.db.Model(&types.AssessmentSession{}).Where("teacher_id = ?", f.teacher).Count(&sessions)
  if sessions != 0 {
    t.Fatalf("failed generation must not leave sessions, got %d", sessions)
  }
}

func TestOverviewListsEveryModule(t *testing.T) {
  f := newAttemptFixture(t)
  second := &types.Module{
    ID:                  2,
    Name:                "Classroom Management",
    Category:            types.CategoryKnowledge,
    AssessmentType:      types.AssessmentTypeMCQ,
    TimeLimitMinutes:    20,
    CooldownHours:       24,
    MaxAttemptsPerMonth: 3,
  }
  if err := f.db.Create(second).Error; err != nil {
    t.Fatalf("seed second module: %v", err)
  }

  overviews, err := f.svc.Overview(context.Background(), f.teacher)
  if err != nil {
    t.Fatalf("Overview: %v", err)
  }
  if len(overviews) != 2 {
    t.Fatalf("overviews = %d, want 2", len(overviews))
  }
  for _, o := range overviews {
    if !o.Eligibility.Eligible {
      t.Fatalf("module %d should start eligible", o.Module.ID)
    }
    if o.Summary != nil || o.Performance != nil {
      t.Fatalf("fresh teacher should have no summary or performance")
    }
  }
}

func TestDaysUntilMonthReset(t *testing.T) {
  cases := []struct {
    now  time.Time
    want int
  }{
    {time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), 1},
    {time.Date(2025, 6, 29, 23, 0, 0, 0, time.UTC), 2},
    {time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 30},
    {time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC), 1},
  }
  for _, tc := range cases {
    if got := daysUntilMonthReset(tc.now); got != tc.want {
      t.Errorf("daysUntilMonthReset(%v) = %d, want %d", tc.now, got, tc.want)
    }
  }
}
