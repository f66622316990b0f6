package assessment

import (
  "fmt"
  "strings"

  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

// bloomDistributions is the Understand/Apply/Analyze/Evaluate split
// targeted per difficulty when Bloom's-taxonomy mode is on for subject
// knowledge.
var bloomDistributions = map[string][4]int{
  "easy":   {40, 35, 20, 5},
  "medium": {25, 35, 30, 10},
  "hard":   {15, 30, 35, 20},
}

var bloomLevels = [4]string{"Understand", "Apply", "Analyze", "Evaluate"}

// BloomTarget picks the Bloom level for fan-out slot i of n so that the
// generated batch approximates the difficulty's distribution.
func BloomTarget(difficulty string, i, n int) string {
  dist, ok := bloomDistributions[strings.ToLower(difficulty)]
  if !ok {
    dist = bloomDistributions["medium"]
  }
  if n <= 0 {
    return bloomLevels[0]
  }
  // Position of the slot in the cumulative percentage scale.
  position := (i*100 + 50) / n
  cumulative := 0
  for idx, pct := range dist {
    cumulative += pct
    if position < cumulative {
      return bloomLevels[idx]
    }
  }
  return bloomLevels[3]
}

func subjectQuestionPrompt(profile *types.TeacherProfile, subject string, grade int, topic string, difficulty, bloomLevel string) string {
  var b strings.Builder

  fmt.Fprintf(&b, "Generate exactly ONE multiple-choice question testing subject-matter knowledge of %s for Grade %d.\n", subject, grade)
  fmt.Fprintf(&b, "Topic: %s\n", topic)
  fmt.Fprintf(&b, "Difficulty: %s. Bloom's taxonomy level: %s.\n", difficulty, bloomLevel)
  b.WriteString("The question must test the subject content itself. Do NOT ask about teaching methods, pedagogy, lesson planning or classroom practice.\n")

  if IsIndianLanguage(subject) {
    fmt.Fprintf(&b, "Write the question and ALL four options in %s using its native script only. No transliteration, no English words.\n", subject)
  }

  b.WriteString("\nRespond with a single JSON object and nothing else:\n")
  b.WriteString(`{"prompt": "...", "options": ["A) ...", "B) ...", "C) ...", "D) ..."], "correct_answer": "A", "explanation": "..."}`)
  b.WriteString("\nExactly four options. correct_answer must be one letter A, B, C or D.")

  return b.String()
}

func moduleItemsPrompt(module *types.Module, spec IsolationSpec, count int, difficulty string) string {
  var b strings.Builder

  fmt.Fprintf(&b, "Generate exactly %d multiple-choice questions for the teacher-competency module %q (%s difficulty).\n", count, module.Name, difficulty)
  fmt.Fprintf(&b, "Every question must assess %s and nothing else.\n\n", module.Name)

  if len(spec.ForbiddenPhrases) > 0 {
    b.WriteString("Forbidden topics (content of other modules) - never mention:\n")
    for _, phrase := range spec.ForbiddenPhrases {
      fmt.Fprintf(&b, "- %s\n", phrase)
    }
    b.WriteString("\n")
  }

  if len(spec.RequiredKeywords) > 0 {
    fmt.Fprintf(&b, "At least one of these keywords must appear in each question or its options: %s\n\n", strings.Join(spec.RequiredKeywords, ", "))
  }

  b.WriteString("Follow the style of these examples:\n")
  for _, example := range spec.Examples {
    if example != "" {
      b.WriteString(example)
      b.WriteString("\n")
    }
  }

  b.WriteString("\nRespond with a JSON array of question objects and nothing else:\n")
  b.WriteString(`[{"prompt": "...", "options": ["A) ...", "B) ...", "C) ...", "D) ..."], "correct_answer": "A", "explanation": "..."}]`)
  b.WriteString("\nExactly four options per question. correct_answer must be one letter A, B, C or D.")

  return b.String()
}
