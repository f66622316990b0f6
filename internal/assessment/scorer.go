package assessment

import (
  "context"
  "encoding/json"
  "fmt"
  "math"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/analysis"
  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type SubmittedAnswer struct {
  QuestionID uuid.UUID `json:"question_id"`
  Selected   string    `json:"selected"`
}

type AnswerReview struct {
  QuestionID  uuid.UUID `json:"question_id"`
  Prompt      string    `json:"prompt"`
  Options     []string  `json:"options"`
  Selected    string    `json:"selected"`
  Correct     string    `json:"correct"`
  IsCorrect   bool      `json:"is_correct"`
  Explanation string    `json:"explanation,omitempty"`
}

type SubmitResult struct {
  Score          float64        `json:"score"`
  Correct        int            `json:"correct"`
  Total          int            `json:"total"`
  Rating         string         `json:"rating"`
  SessionExpired bool           `json:"session_expired,omitempty"`
  Review         []AnswerReview `json:"review"`
}

// Scorer grades an MCQ submission and fans the result out to the
// performance row, the append-only history, and the attempt summary.
type Scorer interface {
  Submit(ctx context.Context, teacherID uuid.UUID, moduleID int, answers []SubmittedAnswer) (*SubmitResult, error)
}

type scorerService struct {
  db           *gorm.DB
  log          *logger.Logger
  moduleRepo   repos.ModuleRepo
  questionRepo repos.QuestionRepo
  responseRepo repos.ResponseRepo
  sessionRepo  repos.SessionRepo
  perfRepo     repos.PerformanceRepo
  historyRepo  repos.PerformanceHistoryRepo
  summaryRepo  repos.AttemptSummaryRepo

  now func() time.Time
}

func NewScorer(
  db *gorm.DB,
  baseLog *logger.Logger,
  moduleRepo repos.ModuleRepo,
  questionRepo repos.QuestionRepo,
  responseRepo repos.ResponseRepo,
  sessionRepo repos.SessionRepo,
  perfRepo repos.PerformanceRepo,
  historyRepo repos.PerformanceHistoryRepo,
  summaryRepo repos.AttemptSummaryRepo,
) Scorer {
  return &scorerService{
    db:           db,
    log:          baseLog.With("service", "Scorer"),
    moduleRepo:   moduleRepo,
    questionRepo: questionRepo,
    responseRepo: responseRepo,
    sessionRepo:  sessionRepo,
    perfRepo:     perfRepo,
    historyRepo:  historyRepo,
    summaryRepo:  summaryRepo,
    now:          func() time.Time { return time.Now().UTC() },
  }
}

func round2(x float64) float64 {
  return math.Round(x*100) / 100
}

func (s *scorerService) Submit(ctx context.Context, teacherID uuid.UUID, moduleID int, answers []SubmittedAnswer) (*SubmitResult, error) {
  module, err := s.moduleRepo.GetByID(ctx, nil, moduleID)
  if err != nil {
    return nil, err
  }
  if module == nil {
    return nil, apperr.Newf(apperr.KindModuleNotFound, "module %d does not exist", moduleID)
  }
  if module.AssessmentType != types.AssessmentTypeMCQ {
    return nil, apperr.Newf(apperr.KindModuleTypeMismatch, "module %q is not MCQ-assessed", module.Name)
  }

  // Dedup before the ownership check so repeated ids cannot masquerade
  // as a full answer set.
  ids := make([]uuid.UUID, 0, len(answers))
  seen := make(map[uuid.UUID]bool, len(answers))
  for _, a := range answers {
    if seen[a.QuestionID] {
      return nil, apperr.New(apperr.KindInvalidQuestionIDs, "duplicate question ids in submission")
    }
    seen[a.QuestionID] = true
    ids = append(ids, a.QuestionID)
  }

  questions, err := s.questionRepo.GetByIDsForOwner(ctx, nil, teacherID, moduleID, ids)
  if err != nil {
    return nil, err
  }
  if len(questions) != len(answers) {
    return nil, apperr.Newf(apperr.KindInvalidQuestionIDs, "%d of %d question ids are not yours or not in this module", len(answers)-len(questions), len(answers))
  }

  byID := make(map[uuid.UUID]*types.AssessmentQuestion, len(questions))
  for _, q := range questions {
    byID[q.ID] = q
  }

  now := s.now()
  correct := 0
  responses := make([]*types.AssessmentResponse, 0, len(answers))
  review := make([]AnswerReview, 0, len(answers))
  var weakTopics []string
  weakSeen := make(map[string]bool)

  for _, a := range answers {
    q := byID[a.QuestionID]
    selected := strings.ToUpper(strings.TrimSpace(a.Selected))
    isCorrect := selected == strings.ToUpper(q.CorrectAnswer)
    if isCorrect {
      correct++
    } else if q.Topic != "" && !weakSeen[q.Topic] {
      weakSeen[q.Topic] = true
      weakTopics = append(weakTopics, q.Topic)
    }

    responses = append(responses, &types.AssessmentResponse{
      ID:         uuid.New(),
      TeacherID:  teacherID,
      ModuleID:   moduleID,
      QuestionID: q.ID,
      Selected:   selected,
      IsCorrect:  isCorrect,
      CreatedAt:  now,
    })

    var options []string
    if err := json.Unmarshal(q.Options, &options); err != nil {
      return nil, err
    }
    review = append(review, AnswerReview{
      QuestionID:  q.ID,
      Prompt:      q.Prompt,
      Options:     options,
      Selected:    selected,
      Correct:     q.CorrectAnswer,
      IsCorrect:   isCorrect,
      Explanation: q.Explanation,
    })
  }

  total := len(answers)
  pct := 0.0
  if total > 0 {
    pct = round2(float64(correct) / float64(total) * 100)
  }
  rating := analysis.Rating(pct)

  result := &SubmitResult{
    Score:   pct,
    Correct: correct,
    Total:   total,
    Rating:  rating,
    Review:  review,
  }

  txErr := s.db.Transaction(func(tx *gorm.DB) error {
    if len(responses) > 0 {
      if err := s.responseRepo.Create(ctx, tx, responses); err != nil {
        return err
      }
    }

    perf, err := s.perfRepo.Get(ctx, tx, teacherID, moduleID)
    if err != nil {
      return err
    }
    if perf == nil {
      perf = &types.Performance{ID: uuid.New(), TeacherID: teacherID, ModuleID: moduleID}
    }
    perf.Score = pct
    perf.Rating = rating
    perf.Details = detailString(correct, total)
    if err := s.perfRepo.Upsert(ctx, tx, perf); err != nil {
      return err
    }

    // History goes in only after the performance upsert succeeds so a
    // failed submit leaves neither.
    if err := s.historyRepo.Create(ctx, tx, &types.PerformanceHistory{
      ID:        uuid.New(),
      TeacherID: teacherID,
      ModuleID:  moduleID,
      Score:     pct,
      Rating:    rating,
      CreatedAt: now,
    }); err != nil {
      return err
    }

    if err := s.updateSummary(ctx, tx, teacherID, moduleID, pct, weakTopics); err != nil {
      return err
    }

    session, err := s.sessionRepo.GetActive(ctx, tx, teacherID, moduleID)
    if err != nil {
      return err
    }
    if session != nil {
      if now.After(session.ExpiresAt) {
        result.SessionExpired = true
        s.log.Warn("submission after session expiry",
          "teacher_id", teacherID.String(),
          "module_id", moduleID,
          "expired_at", session.ExpiresAt)
      }
      if err := s.sessionRepo.MarkSubmitted(ctx, tx, session.ID, now); err != nil {
        return err
      }
    }
    return nil
  })
  if txErr != nil {
    return nil, txErr
  }
  return result, nil
}

func detailString(correct, total int) string {
  return fmt.Sprintf("MCQ auto-score: %d/%d", correct, total)
}

func (s *scorerService) updateSummary(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int, score float64, weakTopics []string) error {
  summary, err := s.summaryRepo.Get(ctx, tx, teacherID, moduleID)
  if err != nil {
    return err
  }
  if summary == nil {
    summary = &types.AttemptSummary{
      ID:        uuid.New(),
      TeacherID: teacherID,
      ModuleID:  moduleID,
    }
  }

  prevTotal := summary.TotalAttempts
  summary.TotalAttempts = prevTotal + 1
  summary.LatestScore = score
  if prevTotal == 0 {
    summary.FirstAttemptScore = score
    summary.BestScore = score
    summary.AverageScore = score
  } else {
    if score > summary.BestScore {
      summary.BestScore = score
    }
    summary.AverageScore = round2((summary.AverageScore*float64(prevTotal) + score) / float64(prevTotal+1))
  }
  summary.ImprovementRate = round2(summary.LatestScore - summary.FirstAttemptScore)

  if weakTopics == nil {
    weakTopics = []string{}
  }
  raw, err := json.Marshal(weakTopics)
  if err != nil {
    return err
  }
  summary.WeakTopics = datatypes.JSON(raw)

  return s.summaryRepo.Upsert(ctx, tx, summary)
}
