package assessment

import (
  "context"
  "encoding/json"
  "math/rand"
  "strconv"

  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
  "github.com/shikshaloop/shikshaloop-backend/internal/curriculum"
  "github.com/shikshaloop/shikshaloop-backend/internal/llm"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
  "github.com/shikshaloop/shikshaloop-backend/internal/utils"
)

// ItemGenerator produces and persists N questions for a (teacher, module)
// request. The attempt controller calls it inside the start-session
// transaction so generated questions and the session commit atomically.
type ItemGenerator interface {
  GenerateQuestions(ctx context.Context, tx *gorm.DB, profile *types.TeacherProfile, module *types.Module, count int, difficulty string) ([]*types.AssessmentQuestion, error)
}

type generatorService struct {
  db           *gorm.DB
  log          *logger.Logger
  llmClient    llm.Client
  store        curriculum.Store
  questionRepo repos.QuestionRepo
  premiumModel string
}

func NewGeneratorService(
  db *gorm.DB,
  baseLog *logger.Logger,
  llmClient llm.Client,
  store curriculum.Store,
  questionRepo repos.QuestionRepo,
) ItemGenerator {
  return &generatorService{
    db:           db,
    log:          baseLog.With("service", "ItemGenerator"),
    llmClient:    llmClient,
    store:        store,
    questionRepo: questionRepo,
    premiumModel: utils.GetEnv("LLM_PREMIUM_MODEL", "", baseLog),
  }
}

type topicRef struct {
  Topic   string
  Subject string
  Grade   int
}

func (s *generatorService) GenerateQuestions(ctx context.Context, tx *gorm.DB, profile *types.TeacherProfile, module *types.Module, count int, difficulty string) ([]*types.AssessmentQuestion, error) {
  if profile == nil {
    return nil, apperr.New(apperr.KindProfileMissing, "complete your teacher profile before starting an assessment")
  }
  if count <= 0 {
    count = 8
  }
  if difficulty == "" {
    difficulty = "medium"
  }

  var items []Item
  var err error
  switch KindForModule(module.Name) {
  case KindSubjectKnowledge:
    items, err = s.generateSubjectItems(ctx, profile, count, difficulty)
  default:
    items, err = s.generateIsolatedItems(ctx, module, count, difficulty)
  }
  if err != nil {
    return nil, err
  }

  if len(items) == 0 {
    return nil, apperr.New(apperr.KindGenerationShortfall, "no valid questions could be generated")
  }
  if len(items) < count {
    s.log.Warn("Generation shortfall",
      "module", module.Name,
      "requested", count,
      "generated", len(items),
    )
  }

  return s.persist(ctx, tx, profile.TeacherID, module.ID, items)
}

// generateSubjectItems fans out one model call per slot, each drawing a
// random topic from the pooled (board, grade, subject) curriculum. Failed
// slots are dropped; the remaining calls are never aborted.
func (s *generatorService) generateSubjectItems(ctx context.Context, profile *types.TeacherProfile, count int, difficulty string) ([]Item, error) {
  grades := ParseGrades(profile.GradesTaught)
  subjects := ParseSubjects(profile.SubjectsTaught)
  board := ResolveBoard(profile.Board, profile.State)

  pool := s.buildTopicPool(ctx, board, grades, subjects)
  if len(pool) == 0 {
    s.log.Warn("Empty topic pool", "board", board, "grades", grades, "subjects", subjects)
    return nil, nil
  }

  model := s.premiumModel
  slots := make([]*Item, count)
  g, groupCtx := errgroup.WithContext(ctx)
  for i := 0; i < count; i++ {
    i := i
    ref := pool[rand.Intn(len(pool))]
    g.Go(func() error {
      prompt := subjectQuestionPrompt(profile, ref.Subject, ref.Grade, ref.Topic, difficulty, BloomTarget(difficulty, i, count))
      obj, callErr := s.llmClient.GenerateObject(groupCtx, prompt, &llm.CallOptions{
        Model:   model,
        Timeout: llm.ShortCallTimeout,
      })
      if callErr != nil {
        s.log.Warn("Subject question slot dropped", "slot", i, "error", callErr)
        return nil
      }
      item := ItemFromModelOutput(obj)
      item.Topic = ref.Topic
      item.BloomLevel = BloomTarget(difficulty, i, count)
      if vErr := ValidateStructural(item); vErr != nil {
        s.log.Warn("Subject question slot invalid", "slot", i, "error", vErr)
        return nil
      }
      slots[i] = &item
      return nil
    })
  }
  _ = g.Wait()

  var items []Item
  for _, slot := range slots {
    if slot != nil {
      items = append(items, *slot)
    }
  }
  return items, nil
}

// buildTopicPool gathers topics for every (grade, subject) tuple,
// retrying each tuple against CBSE when the resolved board has nothing.
func (s *generatorService) buildTopicPool(ctx context.Context, board string, grades []int, subjects []string) []topicRef {
  var pool []topicRef
  for _, grade := range grades {
    class := strconv.Itoa(grade)
    for _, subject := range subjects {
      topics, err := s.store.ListTopics(ctx, board, class, subject)
      if err != nil {
        s.log.Warn("Curriculum query failed", "error", err, "board", board, "class", class, "subject", subject)
        continue
      }
      if len(topics) == 0 && board != "CBSE" {
        topics, err = s.store.ListTopics(ctx, "CBSE", class, subject)
        if err != nil {
          continue
        }
      }
      for _, topic := range topics {
        pool = append(pool, topicRef{Topic: topic.Topic, Subject: subject, Grade: grade})
      }
    }
  }
  return pool
}

// generateIsolatedItems is the single-call path for every non-subject
// module: one N-question request through the module-isolation prompt,
// then the validation filter.
func (s *generatorService) generateIsolatedItems(ctx context.Context, module *types.Module, count int, difficulty string) ([]Item, error) {
  spec := SpecForModule(module.Name)
  prompt := moduleItemsPrompt(module, spec, count, difficulty)

  objects, err := s.llmClient.GenerateJSONArray(ctx, prompt, &llm.CallOptions{
    MaxTokens: 400 * count,
    Timeout:   llm.GenerationTimeout,
  })
  if err != nil {
    return nil, err
  }

  var items []Item
  for idx, obj := range objects {
    item := ItemFromModelOutput(obj)
    if vErr := ValidateStructural(item); vErr != nil {
      s.log.Warn("Generated item rejected", "module", module.Name, "index", idx, "error", vErr)
      continue
    }
    if vErr := ValidateIsolation(item, spec); vErr != nil {
      s.log.Warn("Generated item rejected by isolation filter", "module", module.Name, "index", idx, "error", vErr)
      continue
    }
    items = append(items, item)
  }
  return items, nil
}

func (s *generatorService) persist(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, moduleID int, items []Item) ([]*types.AssessmentQuestion, error) {
  questions := make([]*types.AssessmentQuestion, 0, len(items))
  for _, item := range items {
    optionsJSON, err := optionsToJSON(item.Options)
    if err != nil {
      return nil, err
    }
    questions = append(questions, &types.AssessmentQuestion{
      ID:            uuid.New(),
      TeacherID:     teacherID,
      ModuleID:      moduleID,
      Prompt:        item.Prompt,
      Topic:         item.Topic,
      Options:       optionsJSON,
      CorrectAnswer: item.CorrectAnswer,
      Explanation:   item.Explanation,
      BloomLevel:    item.BloomLevel,
    })
  }
  return s.questionRepo.Create(ctx, tx, questions)
}

func optionsToJSON(options []string) (datatypes.JSON, error) {
  raw, err := json.Marshal(options)
  if err != nil {
    return nil, err
  }
  return datatypes.JSON(raw), nil
}
