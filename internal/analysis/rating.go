package analysis

const (
  RatingExcellent        = "Excellent"
  RatingGood             = "Good"
  RatingNeedsImprovement = "Needs Improvement"
)

// Rating is the single band function shared by the scorer, the analyser
// and the recommendation planner.
func Rating(score float64) string {
  switch {
  case score >= 85:
    return RatingExcellent
  case score >= 60:
    return RatingGood
  default:
    return RatingNeedsImprovement
  }
}
