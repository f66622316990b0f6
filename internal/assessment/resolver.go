package assessment

import (
  "strconv"
  "strings"
)

// Profile fields arrive as free text ("7-9, 11", "maths, Science"). The
// resolver normalises them into the concrete curriculum keys the store
// understands.

var subjectSynonyms = map[string]string{
  "math":           "Mathematics",
  "maths":          "Mathematics",
  "mathematics":    "Mathematics",
  "science":        "Science",
  "physics":        "Physics",
  "chemistry":      "Chemistry",
  "biology":        "Biology",
  "english":        "English",
  "telugu":         "Telugu",
  "hindi":          "Hindi",
  "tamil":          "Tamil",
  "social":         "Social Studies",
  "social studies": "Social Studies",
  "sst":            "Social Studies",
  "evs":            "EVS",
}

var stateBoardByState = map[string]string{
  "telangana":      "TSBSE",
  "andhra pradesh": "BSEAP",
  "tamil nadu":     "TNBSE",
  "karnataka":      "KSEEB",
  "maharashtra":    "MSBSHSE",
  "kerala":         "KBPE",
}

// indianLanguages are subjects whose items must be generated in the
// native script only.
var indianLanguages = map[string]bool{
  "Telugu": true,
  "Hindi":  true,
  "Tamil":  true,
}

// ParseGrades accepts comma-separated grades and ranges ("7-9", "7–9")
// and returns the distinct grades in input order.
func ParseGrades(s string) []int {
  var grades []int
  seen := map[int]bool{}

  add := func(g int) {
    if g >= 1 && g <= 12 && !seen[g] {
      seen[g] = true
      grades = append(grades, g)
    }
  }

  s = strings.ReplaceAll(s, "–", "-")
  for _, part := range strings.Split(s, ",") {
    part = strings.TrimSpace(part)
    if part == "" {
      continue
    }
    if lo, hi, ok := strings.Cut(part, "-"); ok {
      start, err1 := strconv.Atoi(strings.TrimSpace(lo))
      end, err2 := strconv.Atoi(strings.TrimSpace(hi))
      if err1 != nil || err2 != nil || end < start {
        continue
      }
      for g := start; g <= end; g++ {
        add(g)
      }
      continue
    }
    if g, err := strconv.Atoi(part); err == nil {
      add(g)
    }
  }
  return grades
}

// CanonicalSubject resolves synonyms; unknown subjects pass through
// title-cased so curriculum lookups stay case-sensitive but predictable.
func CanonicalSubject(s string) string {
  key := strings.ToLower(strings.TrimSpace(s))
  if canonical, ok := subjectSynonyms[key]; ok {
    return canonical
  }
  trimmed := strings.TrimSpace(s)
  if trimmed == "" {
    return ""
  }
  return strings.ToUpper(trimmed[:1]) + trimmed[1:]
}

// ParseSubjects splits a comma-separated subject list and canonicalises
// each entry.
func ParseSubjects(s string) []string {
  var subjects []string
  seen := map[string]bool{}
  for _, part := range strings.Split(s, ",") {
    subject := CanonicalSubject(part)
    if subject == "" || seen[subject] {
      continue
    }
    seen[subject] = true
    subjects = append(subjects, subject)
  }
  return subjects
}

// ResolveBoard maps a profile's (board, state) to a concrete curriculum
// board key. A generic "State Board" resolves through the state; unknown
// boards fall back to CBSE.
func ResolveBoard(board, state string) string {
  b := strings.TrimSpace(board)
  switch strings.ToLower(b) {
  case "state board", "stateboard", "state":
    if key, ok := stateBoardByState[strings.ToLower(strings.TrimSpace(state))]; ok {
      return key
    }
    return "CBSE"
  }

  known := map[string]string{
    "cbse":    "CBSE",
    "icse":    "ICSE",
    "tsbse":   "TSBSE",
    "bseap":   "BSEAP",
    "tnbse":   "TNBSE",
    "kseeb":   "KSEEB",
    "msbshse": "MSBSHSE",
    "kbpe":    "KBPE",
  }
  if key, ok := known[strings.ToLower(b)]; ok {
    return key
  }
  return "CBSE"
}

// IsIndianLanguage reports whether items for the subject must be in the
// native script.
func IsIndianLanguage(subject string) bool {
  return indianLanguages[subject]
}
