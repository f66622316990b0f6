package assessment

import (
  "strings"
)

// ModuleKind replaces dispatch on raw module names: subject knowledge has
// its own generation path, everything else shares the prompt+validate
// path driven by an isolation spec.
type ModuleKind int

const (
  KindSubjectKnowledge ModuleKind = iota
  KindIsolated
)

const SubjectKnowledgeModuleName = "Subject Knowledge"

// IsolationSpec pins a non-subject module to its own vocabulary: items
// drifting into another module's content are rejected, and every item
// must carry at least one of the module's required keywords.
type IsolationSpec struct {
  ForbiddenPhrases []string
  RequiredKeywords []string
  Examples         [3]string
}

// globalForbiddenPhrases are rejected in every module's items.
var globalForbiddenPhrases = []string{
  "as an ai",
  "i cannot",
  "refer to the textbook",
  "all of the above",
  "none of the above",
}

var isolationSpecs = map[string]IsolationSpec{
  "Pedagogical Skills": {
    ForbiddenPhrases: []string{
      "solve the equation",
      "chemical formula",
      "grammar rule",
      "parent-teacher meeting",
      "submit your portfolio",
    },
    RequiredKeywords: []string{
      "teaching", "instruction", "lesson", "learners", "scaffolding", "classroom",
    },
    Examples: [3]string{
      `{"prompt":"A teacher notices several students losing focus during a 40-minute lecture. Which instructional strategy best re-engages them?","options":["Extend the lecture with more detail","Switch to a think-pair-share activity","Assign silent copying from the board","Postpone the topic to the next class"],"correct_answer":"B"}`,
      `{"prompt":"Which approach best applies scaffolding when introducing a difficult concept?","options":["Present the hardest problem first","Model the skill, then guide practice, then release to independent work","Ask students to self-study the chapter","Test students before any instruction"],"correct_answer":"B"}`,
      `{"prompt":"In a mixed-ability classroom, differentiated instruction primarily means:","options":["Teaching each lesson twice","Varying content, process and product to learner readiness","Grouping only by test scores","Reducing syllabus coverage"],"correct_answer":"B"}`,
    },
  },
  "Assessment & Feedback": {
    ForbiddenPhrases: []string{
      "solve the equation",
      "lesson plan template",
      "classroom seating",
      "photosynthesis",
    },
    RequiredKeywords: []string{
      "assessment", "feedback", "rubric", "formative", "summative", "evaluation",
    },
    Examples: [3]string{
      `{"prompt":"Which of these is a formative assessment practice?","options":["End-of-term examination","Exit tickets after each lesson","Board examination","Annual portfolio review"],"correct_answer":"B"}`,
      `{"prompt":"Effective feedback on student work should primarily be:","options":["A numeric grade only","Specific, actionable and timely","Delayed to the end of term","Comparative across students"],"correct_answer":"B"}`,
      `{"prompt":"A rubric improves evaluation mainly because it:","options":["Speeds up grading regardless of quality","Makes criteria explicit and consistent","Removes the need for feedback","Ranks students publicly"],"correct_answer":"B"}`,
    },
  },
  "Classroom Management": {
    ForbiddenPhrases: []string{
      "quadratic", "rubric design", "summative examination",
    },
    RequiredKeywords: []string{
      "classroom", "behaviour", "behavior", "routine", "discipline", "engagement",
    },
    Examples: [3]string{
      `{"prompt":"The most effective time to establish classroom routines is:","options":["After the first conflict","In the first week of the term","Just before examinations","Only when disruptions increase"],"correct_answer":"B"}`,
      `{"prompt":"When a student repeatedly disrupts a lesson, the first proportionate response is:","options":["Send the student out immediately","A quiet, private redirection","Punish the whole class","Ignore it for the rest of term"],"correct_answer":"B"}`,
      `{"prompt":"Positive behaviour support focuses on:","options":["Cataloguing every infraction","Teaching and reinforcing expected behaviour","Stricter punishments each week","Removing free time entirely"],"correct_answer":"B"}`,
    },
  },
  "Technology Integration": {
    ForbiddenPhrases: []string{
      "chalkboard only", "trigonometric identity", "portfolio submission",
    },
    RequiredKeywords: []string{
      "digital", "technology", "online", "ict", "multimedia", "tool",
    },
    Examples: [3]string{
      `{"prompt":"A teacher wants quick in-class checks of understanding using student phones. Which tool category fits best?","options":["Word processor","Live polling or quiz app","Spreadsheet macros","Photo editor"],"correct_answer":"B"}`,
      `{"prompt":"Blended learning combines:","options":["Two textbooks per subject","Face-to-face teaching with online activities","Only recorded lectures","Homework with extra homework"],"correct_answer":"B"}`,
      `{"prompt":"When introducing a digital tool, the first consideration should be:","options":["Its popularity on social media","The learning objective it serves","Its colour scheme","Whether it replaces the teacher"],"correct_answer":"B"}`,
    },
  },
}

// KindForModule classifies a catalogue module by name.
func KindForModule(name string) ModuleKind {
  if strings.EqualFold(strings.TrimSpace(name), SubjectKnowledgeModuleName) {
    return KindSubjectKnowledge
  }
  return KindIsolated
}

// SpecForModule returns the isolation spec for a non-subject module. A
// module without a curated spec gets a permissive default keyed on its
// own name.
func SpecForModule(name string) IsolationSpec {
  if spec, ok := isolationSpecs[name]; ok {
    return spec
  }
  lower := strings.ToLower(name)
  return IsolationSpec{
    RequiredKeywords: strings.Fields(lower),
  }
}

// ForbiddenPhrasesFor merges the global list with the module's own.
func ForbiddenPhrasesFor(spec IsolationSpec) []string {
  merged := make([]string, 0, len(globalForbiddenPhrases)+len(spec.ForbiddenPhrases))
  merged = append(merged, globalForbiddenPhrases...)
  merged = append(merged, spec.ForbiddenPhrases...)
  return merged
}
