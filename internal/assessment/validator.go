package assessment

import (
  "fmt"
  "regexp"
  "strings"
)

// Item is the canonical generated question before persistence.
type Item struct {
  Prompt        string
  Options       []string
  CorrectAnswer string
  Explanation   string
  BloomLevel    string
  Topic         string
}

var optionMarkerRe = regexp.MustCompile(`^\s*[A-Da-d][\)\].:\-]\s*`)

// StripOptionMarker removes a leading "A) " / "b." style marker so the
// letter answer stays unambiguous once options are stored positionally.
func StripOptionMarker(option string) string {
  return strings.TrimSpace(optionMarkerRe.ReplaceAllString(option, ""))
}

// ItemFromModelOutput maps one parsed model object into an Item. It is
// lenient about field presence; ValidateStructural decides acceptance.
func ItemFromModelOutput(obj map[string]interface{}) Item {
  item := Item{}
  if v, ok := obj["prompt"].(string); ok {
    item.Prompt = strings.TrimSpace(v)
  } else if v, ok := obj["question"].(string); ok {
    item.Prompt = strings.TrimSpace(v)
  }
  if raw, ok := obj["options"].([]interface{}); ok {
    for _, o := range raw {
      if s, ok := o.(string); ok {
        item.Options = append(item.Options, StripOptionMarker(s))
      }
    }
  }
  if v, ok := obj["correct_answer"].(string); ok {
    item.CorrectAnswer = strings.ToUpper(strings.TrimSpace(v))
  }
  if v, ok := obj["explanation"].(string); ok {
    item.Explanation = strings.TrimSpace(v)
  }
  if v, ok := obj["bloom_level"].(string); ok {
    item.BloomLevel = strings.TrimSpace(v)
  }
  return item
}

// ValidateStructural enforces the question invariants: non-empty prompt,
// exactly four options, correct answer a single letter A-D.
func ValidateStructural(item Item) error {
  if item.Prompt == "" {
    return fmt.Errorf("empty prompt")
  }
  if len(item.Options) != 4 {
    return fmt.Errorf("expected 4 options, got %d", len(item.Options))
  }
  for i, option := range item.Options {
    if strings.TrimSpace(option) == "" {
      return fmt.Errorf("option %d is empty", i)
    }
  }
  switch item.CorrectAnswer {
  case "A", "B", "C", "D":
  default:
    return fmt.Errorf("correct answer %q not in A-D", item.CorrectAnswer)
  }
  return nil
}

// ValidateIsolation rejects items that leak another module's content or
// miss every required keyword.
func ValidateIsolation(item Item, spec IsolationSpec) error {
  haystack := strings.ToLower(item.Prompt + " " + strings.Join(item.Options, " "))

  for _, phrase := range ForbiddenPhrasesFor(spec) {
    if strings.Contains(haystack, strings.ToLower(phrase)) {
      return fmt.Errorf("contains forbidden phrase %q", phrase)
    }
  }

  if len(spec.RequiredKeywords) == 0 {
    return nil
  }
  for _, keyword := range spec.RequiredKeywords {
    if strings.Contains(haystack, strings.ToLower(keyword)) {
      return nil
    }
  }
  return fmt.Errorf("missing all required keywords")
}
