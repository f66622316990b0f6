package analysis

type Trend string

const (
  TrendDeclined Trend = "declined"
  TrendStagnant Trend = "stagnant"
  TrendImproved Trend = "improved"
  TrendNew      Trend = "new"
)

type Priority string

const (
  PriorityUrgent Priority = "urgent"
  PriorityHigh   Priority = "high"
  PriorityMedium Priority = "medium"
  PriorityLow    Priority = "low"
)

const (
  DifficultyBeginner     = "Beginner"
  DifficultyIntermediate = "Intermediate"
  DifficultyAdvanced     = "Advanced"
)

func PriorityOrdinal(p Priority) int {
  switch p {
  case PriorityUrgent:
    return 0
  case PriorityHigh:
    return 1
  case PriorityMedium:
    return 2
  default:
    return 3
  }
}

// ChangePercent guards the previous=0 case.
func ChangePercent(current, previous float64) float64 {
  if previous == 0 {
    return 0
  }
  return (current - previous) / previous * 100
}

// ClassifyTrend maps a change percentage to a trajectory. The ±5% band
// counts as stagnant.
func ClassifyTrend(changePct float64) Trend {
  switch {
  case changePct < -5:
    return TrendDeclined
  case changePct > 5:
    return TrendImproved
  default:
    return TrendStagnant
  }
}

// PriorityFor derives the urgency of acting on a module. The conditions
// are ordered; the first match wins.
func PriorityFor(trend Trend, score float64) Priority {
  switch {
  case trend == TrendDeclined && score < 50:
    return PriorityUrgent
  case trend == TrendDeclined:
    return PriorityHigh
  case score < 50:
    return PriorityUrgent
  case score < 60:
    return PriorityHigh
  case trend == TrendStagnant && score < 70:
    return PriorityHigh
  case trend == TrendImproved:
    return PriorityMedium
  case score >= 80:
    return PriorityLow
  default:
    return PriorityMedium
  }
}

// DifficultyFor matches the course difficulty band to the same inputs.
func DifficultyFor(trend Trend, score float64) string {
  if trend == TrendDeclined {
    if score < 50 {
      return DifficultyBeginner
    }
    return DifficultyIntermediate
  }
  switch {
  case score < 50:
    return DifficultyBeginner
  case score < 70:
    return DifficultyIntermediate
  default:
    return DifficultyAdvanced
  }
}
