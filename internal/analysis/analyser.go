package analysis

import (
  "context"
  "encoding/json"
  "sort"
  "time"

  "github.com/google/uuid"
  "github.com/redis/go-redis/v9"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

// typeWeights is the fixed weighting of assessment types in the overall
// score. Deliberately not tunable per deployment.
var typeWeights = map[string]float64{
  types.AssessmentTypeMCQ:        0.5,
  types.AssessmentTypeSubmission: 0.3,
  types.AssessmentTypeOutcome:    0.2,
}

const cohortCacheTTL = 60 * time.Second

type TeacherSummary struct {
  TeacherID  uuid.UUID          `json:"teacher_id"`
  TypeMeans  map[string]float64 `json:"type_means"`
  Overall    float64            `json:"overall"`
  Rating     string             `json:"rating"`
  Percentile float64            `json:"percentile"`
  CohortSize int                `json:"cohort_size"`
  Modules    []ModuleScore      `json:"modules"`
}

type ModuleScore struct {
  ModuleID   int     `json:"module_id"`
  ModuleName string  `json:"module_name"`
  Score      float64 `json:"score"`
  Rating     string  `json:"rating"`
}

type ModuleTrend struct {
  ModuleID              int      `json:"module_id"`
  ModuleName            string   `json:"module_name"`
  CurrentScore          float64  `json:"current_score"`
  PreviousScore         float64  `json:"previous_score"`
  ChangePct             float64  `json:"change_pct"`
  Trend                 Trend    `json:"trend"`
  Priority              Priority `json:"priority"`
  RecommendedDifficulty string   `json:"recommended_difficulty"`
}

// Service is the read-only consumer of performance state. It never
// writes; the scorer owns all writes to performance and history.
type Service interface {
  Summary(ctx context.Context, teacherID uuid.UUID) (*TeacherSummary, error)
  ModuleTrends(ctx context.Context, teacherID uuid.UUID) ([]*ModuleTrend, error)
  PriorityAreas(ctx context.Context, teacherID uuid.UUID, max int) ([]*ModuleTrend, error)
}

type service struct {
  db          *gorm.DB
  log         *logger.Logger
  cache       *redis.Client
  perfRepo    repos.PerformanceRepo
  historyRepo repos.PerformanceHistoryRepo
  profileRepo repos.TeacherProfileRepo
  moduleRepo  repos.ModuleRepo
}

func NewService(
  db *gorm.DB,
  baseLog *logger.Logger,
  cache *redis.Client,
  perfRepo repos.PerformanceRepo,
  historyRepo repos.PerformanceHistoryRepo,
  profileRepo repos.TeacherProfileRepo,
  moduleRepo repos.ModuleRepo,
) Service {
  return &service{
    db:          db,
    log:         baseLog.With("service", "PerformanceAnalyser"),
    cache:       cache,
    perfRepo:    perfRepo,
    historyRepo: historyRepo,
    profileRepo: profileRepo,
    moduleRepo:  moduleRepo,
  }
}

func (s *service) Summary(ctx context.Context, teacherID uuid.UUID) (*TeacherSummary, error) {
  rows, err := s.perfRepo.ListByTeacher(ctx, nil, teacherID)
  if err != nil {
    return nil, err
  }
  modules, err := s.moduleRepo.List(ctx, nil)
  if err != nil {
    return nil, err
  }
  typeByModule := make(map[int]string, len(modules))
  nameByModule := make(map[int]string, len(modules))
  for _, m := range modules {
    typeByModule[m.ID] = m.AssessmentType
    nameByModule[m.ID] = m.Name
  }

  sums := map[string]float64{}
  counts := map[string]int{}
  moduleScores := make([]ModuleScore, 0, len(rows))
  for _, row := range rows {
    assessmentType := typeByModule[row.ModuleID]
    if assessmentType == "" {
      continue
    }
    sums[assessmentType] += row.Score
    counts[assessmentType]++
    moduleScores = append(moduleScores, ModuleScore{
      ModuleID:   row.ModuleID,
      ModuleName: nameByModule[row.ModuleID],
      Score:      row.Score,
      Rating:     row.Rating,
    })
  }

  typeMeans := map[string]float64{}
  var weightedSum, weightTotal float64
  for assessmentType, sum := range sums {
    mean := sum / float64(counts[assessmentType])
    typeMeans[assessmentType] = mean
    weight := typeWeights[assessmentType]
    weightedSum += weight * mean
    weightTotal += weight
  }
  overall := 0.0
  if weightTotal > 0 {
    overall = weightedSum / weightTotal
  }

  summary := &TeacherSummary{
    TeacherID: teacherID,
    TypeMeans: typeMeans,
    Overall:   overall,
    Rating:    Rating(overall),
    Modules:   moduleScores,
  }

  percentile, cohortSize, err := s.cohortPercentile(ctx, teacherID)
  if err != nil {
    s.log.Warn("Cohort percentile unavailable", "error", err, "teacher_id", teacherID)
  } else {
    summary.Percentile = percentile
    summary.CohortSize = cohortSize
  }
  return summary, nil
}

// cohortPercentile ranks the teacher's mean score (across all their
// performance rows) within all teachers on the same board. The cohort
// mean table is cached briefly; a nil cache computes directly.
func (s *service) cohortPercentile(ctx context.Context, teacherID uuid.UUID) (float64, int, error) {
  profile, err := s.profileRepo.GetByTeacherID(ctx, nil, teacherID)
  if err != nil {
    return 0, 0, err
  }
  if profile == nil {
    return 0, 0, nil
  }

  means, err := s.cohortMeans(ctx, profile.Board)
  if err != nil {
    return 0, 0, err
  }
  subjectMean, ok := means[teacherID]
  if !ok || len(means) == 0 {
    return 0, len(means), nil
  }

  atOrBelow := 0
  for _, mean := range means {
    if mean <= subjectMean {
      atOrBelow++
    }
  }
  return float64(atOrBelow) / float64(len(means)) * 100, len(means), nil
}

func (s *service) cohortMeans(ctx context.Context, board string) (map[uuid.UUID]float64, error) {
  cacheKey := "cohort_means:" + board
  if s.cache != nil {
    if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
      var cached map[uuid.UUID]float64
      if json.Unmarshal(raw, &cached) == nil {
        return cached, nil
      }
    }
  }

  cohort, err := s.profileRepo.ListByBoard(ctx, nil, board)
  if err != nil {
    return nil, err
  }
  teacherIDs := make([]uuid.UUID, 0, len(cohort))
  for _, member := range cohort {
    teacherIDs = append(teacherIDs, member.TeacherID)
  }
  rows, err := s.perfRepo.ListByTeacherIDs(ctx, nil, teacherIDs)
  if err != nil {
    return nil, err
  }

  sums := map[uuid.UUID]float64{}
  counts := map[uuid.UUID]int{}
  for _, row := range rows {
    sums[row.TeacherID] += row.Score
    counts[row.TeacherID]++
  }
  means := map[uuid.UUID]float64{}
  for id, sum := range sums {
    means[id] = sum / float64(counts[id])
  }

  if s.cache != nil {
    if raw, err := json.Marshal(means); err == nil {
      _ = s.cache.Set(ctx, cacheKey, raw, cohortCacheTTL).Err()
    }
  }
  return means, nil
}

// ModuleTrends classifies each module's trajectory from up to its three
// most recent history entries.
func (s *service) ModuleTrends(ctx context.Context, teacherID uuid.UUID) ([]*ModuleTrend, error) {
  rows, err := s.perfRepo.ListByTeacher(ctx, nil, teacherID)
  if err != nil {
    return nil, err
  }
  modules, err := s.moduleRepo.List(ctx, nil)
  if err != nil {
    return nil, err
  }
  nameByModule := make(map[int]string, len(modules))
  for _, m := range modules {
    nameByModule[m.ID] = m.Name
  }

  var trends []*ModuleTrend
  for _, row := range rows {
    history, err := s.historyRepo.ListRecent(ctx, nil, teacherID, row.ModuleID, 3)
    if err != nil {
      return nil, err
    }

    trend := &ModuleTrend{
      ModuleID:   row.ModuleID,
      ModuleName: nameByModule[row.ModuleID],
    }
    if len(history) == 0 {
      trend.CurrentScore = row.Score
      trend.PreviousScore = row.Score
      trend.Trend = TrendNew
    } else {
      trend.CurrentScore = history[0].Score
      trend.PreviousScore = trend.CurrentScore
      if len(history) > 1 {
        trend.PreviousScore = history[1].Score
      }
      trend.ChangePct = ChangePercent(trend.CurrentScore, trend.PreviousScore)
      trend.Trend = ClassifyTrend(trend.ChangePct)
    }
    trend.Priority = PriorityFor(trend.Trend, trend.CurrentScore)
    trend.RecommendedDifficulty = DifficultyFor(trend.Trend, trend.CurrentScore)
    trends = append(trends, trend)
  }
  return trends, nil
}

// PriorityAreas returns the modules most in need of action, ordered by
// priority then ascending current score.
func (s *service) PriorityAreas(ctx context.Context, teacherID uuid.UUID, max int) ([]*ModuleTrend, error) {
  trends, err := s.ModuleTrends(ctx, teacherID)
  if err != nil {
    return nil, err
  }

  sort.SliceStable(trends, func(i, j int) bool {
    oi, oj := PriorityOrdinal(trends[i].Priority), PriorityOrdinal(trends[j].Priority)
    if oi != oj {
      return oi < oj
    }
    return trends[i].CurrentScore < trends[j].CurrentScore
  })

  if max > 0 && len(trends) > max {
    trends = trends[:max]
  }
  return trends, nil
}
