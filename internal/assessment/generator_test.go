package assessment

import (
  "context"
  "encoding/json"
  "errors"
  "sync"
  "testing"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
  "github.com/shikshaloop/shikshaloop-backend/internal/llm"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

// fakeTopicStore serves canned curriculum rows and records which boards
// were queried.
type fakeTopicStore struct {
  mu     sync.Mutex
  topics map[string][]*types.CurriculumTopic
  boards []string
}

func topicKey(board, class, subject string) string {
  return board + "/" + class + "/" + subject
}

func (s *fakeTopicStore) ListTopics(ctx context.Context, board, class, subject string) ([]*types.CurriculumTopic, error) {
  s.mu.Lock()
  s.boards = append(s.boards, board)
  s.mu.Unlock()
  return s.topics[topicKey(board, class, subject)], nil
}

// fakeModelClient answers GenerateObject with one canned question per
// call, optionally failing the first failCalls calls, and answers
// GenerateJSONArray with a fixed batch.
type fakeModelClient struct {
  mu        sync.Mutex
  object    map[string]interface{}
  failCalls int
  calls     int
  array     []map[string]interface{}
  arrayErr  error
}

func (c *fakeModelClient) GenerateText(ctx context.Context, prompt string, opts *llm.CallOptions) (string, error) {
  return "", errors.New("not implemented")
}

func (c *fakeModelClient) GenerateJSONArray(ctx context.Context, prompt string, opts *llm.CallOptions) ([]map[string]interface{}, error) {
  if c.arrayErr != nil {
    return nil, c.arrayErr
  }
  return c.array, nil
}

func (c *fakeModelClient) GenerateObject(ctx context.Context, prompt string, opts *llm.CallOptions) (map[string]interface{}, error) {
  c.mu.Lock()
  c.calls++
  failing := c.calls <= c.failCalls
  c.mu.Unlock()
  if failing {
    return nil, apperr.New(apperr.KindUpstreamError, "provider request failed")
  }
  return c.object, nil
}

func questionObject(prompt string, options ...string) map[string]interface{} {
  if len(options) == 0 {
    options = []string{"A) One", "B) Two", "C) Three", "D) Four"}
  }
  raw := make([]interface{}, len(options))
  for i, o := range options {
    raw[i] = o
  }
  return map[string]interface{}{
    "prompt":         prompt,
    "options":        raw,
    "correct_answer": "b",
    "explanation":    "Because.",
  }
}

func newGeneratorFixture(t *testing.T, store *fakeTopicStore, model *fakeModelClient) (*generatorService, *gorm.DB) {
  t.Helper()
  db := openTestDB(t)
  log := logger.NewNop()
  svc := &generatorService{
    db:           db,
    log:          log,
    llmClient:    model,
    store:        store,
    questionRepo: repos.NewQuestionRepo(db, log),
  }
  return svc, db
}

func mathsProfile() *types.TeacherProfile {
  return &types.TeacherProfile{
    ID:             uuid.New(),
    TeacherID:      uuid.New(),
    GradesTaught:   "7",
    SubjectsTaught: "maths",
    Board:          "CBSE",
  }
}

func cbseTopics(topics ...string) []*types.CurriculumTopic {
  rows := make([]*types.CurriculumTopic, 0, len(topics))
  for i, topic := range topics {
    rows = append(rows, &types.CurriculumTopic{
      ID: i + 1, Board: "CBSE", Class: "7", Subject: "Mathematics", Topic: topic, Sequence: i,
    })
  }
  return rows
}

func TestGenerateSubjectQuestionsDropsFailedSlot(t *testing.T) {
  store := &fakeTopicStore{topics: map[string][]*types.CurriculumTopic{
    topicKey("CBSE", "7", "Mathematics"): cbseTopics("Fractions", "Decimals"),
  }}
  model := &fakeModelClient{object: questionObject("What is 1/2 + 1/4?"), failCalls: 1}
  svc, db := newGeneratorFixture(t, store, model)

  profile := mathsProfile()
  module := &types.Module{ID: 1, Name: "Subject Knowledge", AssessmentType: types.AssessmentTypeMCQ}

  questions, err := svc.GenerateQuestions(context.Background(), nil, profile, module, 4, "medium")
  if err != nil {
    t.Fatalf("GenerateQuestions: %v", err)
  }
  if len(questions) != 3 {
    t.Fatalf("one failed slot should drop, not abort: got %d questions, want 3", len(questions))
  }
  for _, q := range questions {
    if q.TeacherID != profile.TeacherID || q.ModuleID != module.ID {
      t.Fatalf("question not bound to the request: %+v", q)
    }
    if q.CorrectAnswer != "B" {
      t.Fatalf("correct answer = %q, want B", q.CorrectAnswer)
    }
    if q.Topic != "Fractions" && q.Topic != "Decimals" {
      t.Fatalf("topic %q not drawn from the pool", q.Topic)
    }
  }

  var count int64
  db.Model(&types.AssessmentQuestion{}).Count(&count)
  if count != 3 {
    t.Fatalf("persisted %d questions, want 3", count)
  }
}

func TestGenerateSubjectQuestionsBoardFallback(t *testing.T) {
  store := &fakeTopicStore{topics: map[string][]*types.CurriculumTopic{
    topicKey("CBSE", "7", "Mathematics"): cbseTopics("Fractions"),
  }}
  model := &fakeModelClient{object: questionObject("What is 1/2 + 1/4?")}
  svc, _ := newGeneratorFixture(t, store, model)

  profile := mathsProfile()
  profile.Board = "State Board"
  profile.State = "Andhra Pradesh"
  module := &types.Module{ID: 1, Name: "Subject Knowledge", AssessmentType: types.AssessmentTypeMCQ}

  questions, err := svc.GenerateQuestions(context.Background(), nil, profile, module, 2, "medium")
  if err != nil {
    t.Fatalf("GenerateQuestions: %v", err)
  }
  if len(questions) != 2 {
    t.Fatalf("generated %d questions, want 2", len(questions))
  }
  if len(store.boards) < 2 || store.boards[0] != "BSEAP" || store.boards[1] != "CBSE" {
    t.Fatalf("expected BSEAP query then CBSE fallback, got %v", store.boards)
  }
}

func TestGenerateSubjectQuestionsEmptyPool(t *testing.T) {
  store := &fakeTopicStore{topics: map[string][]*types.CurriculumTopic{}}
  model := &fakeModelClient{object: questionObject("unused")}
  svc, db := newGeneratorFixture(t, store, model)

  module := &types.Module{ID: 1, Name: "Subject Knowledge", AssessmentType: types.AssessmentTypeMCQ}
  _, err := svc.GenerateQuestions(context.Background(), nil, mathsProfile(), module, 4, "medium")
  if !apperr.IsKind(err, apperr.KindGenerationShortfall) {
    t.Fatalf("empty topic pool should surface generation_shortfall, got %v", err)
  }

  var count int64
  db.Model(&types.AssessmentQuestion{}).Count(&count)
  if count != 0 {
    t.Fatalf("nothing should persist on shortfall, got %d rows", count)
  }
}

func TestGenerateIsolatedQuestionsFiltersLeaks(t *testing.T) {
  batch := []map[string]interface{}{
    questionObject("Which teaching strategy best re-engages distracted learners?",
      "A) Extend the lecture", "B) Think-pair-share", "C) Silent copying", "D) Postpone the topic"),
    questionObject("Which statement about lesson pacing is accurate?",
      "A) Faster is better", "B) Slower is better", "C) Pace follows learners", "D) All of the above"),
    questionObject("Solve the equation 2x + 3 = 7 for x.",
      "A) 1", "B) 2", "C) 3", "D) 4"),
  }
  store := &fakeTopicStore{}
  model := &fakeModelClient{array: batch}
  svc, db := newGeneratorFixture(t, store, model)

  profile := mathsProfile()
  module := &types.Module{ID: 2, Name: "Pedagogical Skills", AssessmentType: types.AssessmentTypeMCQ}

  questions, err := svc.GenerateQuestions(context.Background(), nil, profile, module, 3, "medium")
  if err != nil {
    t.Fatalf("GenerateQuestions: %v", err)
  }
  if len(questions) != 1 {
    t.Fatalf("isolation filter should keep exactly the clean item, got %d", len(questions))
  }

  var stored types.AssessmentQuestion
  if err := db.First(&stored, "id = ?", questions[0].ID).Error; err != nil {
    t.Fatalf("load question: %v", err)
  }
  var options []string
  if err := json.Unmarshal(stored.Options, &options); err != nil {
    t.Fatalf("options payload: %v", err)
  }
  if len(options) != 4 || options[0] != "Extend the lecture" {
    t.Fatalf("letter markers must be stripped before persistence, got %v", options)
  }
}

func TestGenerateIsolatedQuestionsPropagatesGatewayError(t *testing.T) {
  store := &fakeTopicStore{}
  model := &fakeModelClient{arrayErr: apperr.New(apperr.KindRateLimitedExhausted, "retries exhausted")}
  svc, _ := newGeneratorFixture(t, store, model)

  module := &types.Module{ID: 2, Name: "Pedagogical Skills", AssessmentType: types.AssessmentTypeMCQ}
  _, err := svc.GenerateQuestions(context.Background(), nil, mathsProfile(), module, 3, "medium")
  if !apperr.IsKind(err, apperr.KindRateLimitedExhausted) {
    t.Fatalf("gateway failure must pass through untouched, got %v", err)
  }
}
