package llm

import (
  "regexp"
  "strings"
)

// Model output is rarely clean JSON. The repair pipeline runs the same
// fixed sequence for every caller: fence strip, edge trim, trailing-comma
// removal, missing-comma insertion, truncation recovery. Callers never see
// raw model strings.

var (
  trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
  missingCommaRe  = regexp.MustCompile(`}\s*{`)
)

func stripFences(s string) string {
  s = strings.TrimSpace(s)
  if idx := strings.Index(s, "```"); idx >= 0 {
    s = s[idx+3:]
    s = strings.TrimPrefix(s, "json")
    if end := strings.LastIndex(s, "```"); end >= 0 {
      s = s[:end]
    }
  }
  s = strings.Trim(s, "`")
  return strings.TrimSpace(s)
}

// sliceEdges trims to the substring between the first open and the last
// close delimiter. When the close delimiter is missing the tail is kept
// for truncation recovery.
func sliceEdges(s string, open, close byte) string {
  start := strings.IndexByte(s, open)
  if start < 0 {
    return s
  }
  end := strings.LastIndexByte(s, close)
  if end > start {
    return s[start : end+1]
  }
  return s[start:]
}

func removeTrailingCommas(s string) string {
  return trailingCommaRe.ReplaceAllString(s, "$1")
}

func insertMissingCommas(s string) string {
  return missingCommaRe.ReplaceAllString(s, "},{")
}

// recoverTruncatedArray closes an unterminated array at the last complete
// top-level object so a partial response still yields its validated
// prefix. A `}` only counts when it balances back to array depth; a cut
// inside a nested object discards that object, not the whole batch.
func recoverTruncatedArray(s string) string {
  if strings.HasSuffix(strings.TrimSpace(s), "]") {
    return s
  }

  depth := 0
  inString := false
  escaped := false
  last := -1
  for i := 0; i < len(s); i++ {
    ch := s[i]
    if inString {
      switch {
      case escaped:
        escaped = false
      case ch == '\\':
        escaped = true
      case ch == '"':
        inString = false
      }
      continue
    }
    switch ch {
    case '"':
      inString = true
    case '[', '{':
      depth++
    case ']', '}':
      depth--
      if ch == '}' && depth == 1 {
        last = i
      }
    }
  }
  if last < 0 {
    return s
  }
  return s[:last+1] + "]"
}

// RepairArray runs the full pipeline for an expected JSON array.
func RepairArray(s string) string {
  s = stripFences(s)
  s = sliceEdges(s, '[', ']')
  s = removeTrailingCommas(s)
  s = insertMissingCommas(s)
  s = recoverTruncatedArray(s)
  return s
}

// RepairObject runs the full pipeline for an expected JSON object.
func RepairObject(s string) string {
  s = stripFences(s)
  s = sliceEdges(s, '{', '}')
  s = removeTrailingCommas(s)
  return s
}
