package recommend

import (
  "net/url"
  "strings"
)

// The CPD platform catalogue is fixed; rotation keeps a teacher from
// being funnelled to a single provider.
var platformRotation = []string{"DIKSHA", "SWAYAM", "NISHTHA"}

var platformURLs = map[string]string{
  "DIKSHA":  "https://diksha.gov.in/explore-course",
  "SWAYAM":  "https://swayam.gov.in/explore",
  "NISHTHA": "https://itpd.ncert.gov.in/course/index.php",
}

var platformProviders = map[string]string{
  "DIKSHA":  "NCERT",
  "SWAYAM":  "Ministry of Education",
  "NISHTHA": "NCERT",
}

// PickPlatform rotates among the fixed platform set for priority slot i.
// A platform the teacher has not enrolled on wins; once all are taken the
// slot index cycles through the set.
func PickPlatform(i int, enrolled map[string]bool) string {
  for offset := 0; offset < len(platformRotation); offset++ {
    candidate := platformRotation[(i+offset)%len(platformRotation)]
    if !enrolled[candidate] {
      return candidate
    }
  }
  return platformRotation[i%len(platformRotation)]
}

// PlatformURL returns the platform's catalogue landing page; per-course
// URLs from the model are not trusted.
func PlatformURL(platform string) string {
  if u, ok := platformURLs[strings.ToUpper(platform)]; ok {
    return u
  }
  return platformURLs["DIKSHA"]
}

// CourseURL builds a platform search URL for a discovered course title so
// distinct courses keep distinct URLs under the by-URL dedup.
func CourseURL(platform, title string) string {
  base := PlatformURL(platform)
  title = strings.TrimSpace(title)
  if title == "" {
    return base
  }
  return base + "?query=" + url.QueryEscape(title)
}

func PlatformProvider(platform string) string {
  if provider, ok := platformProviders[strings.ToUpper(platform)]; ok {
    return provider
  }
  return "NCERT"
}

// CanonicalPlatform folds model output onto the fixed set; anything
// unrecognised maps to the requested platform.
func CanonicalPlatform(raw, requested string) string {
  upper := strings.ToUpper(strings.TrimSpace(raw))
  for _, platform := range platformRotation {
    if upper == platform {
      return platform
    }
  }
  return requested
}
