package seed

import (
  "context"
  "fmt"
  "os"

  "gopkg.in/yaml.v3"
  "gorm.io/gorm"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/repos"
  "github.com/shikshaloop/shikshaloop-backend/internal/types"
)

type moduleEntry struct {
  ID                  int    `yaml:"id"`
  Name                string `yaml:"name"`
  Description         string `yaml:"description"`
  Category            string `yaml:"category"`
  AssessmentType      string `yaml:"assessment_type"`
  TimeLimitMinutes    int    `yaml:"time_limit_minutes"`
  CooldownHours       int    `yaml:"cooldown_hours"`
  MaxAttemptsPerMonth int    `yaml:"max_attempts_per_month"`
}

type catalogue struct {
  Modules []moduleEntry `yaml:"modules"`
}

// Modules loads the module catalogue file and inserts any missing
// entries. Existing rows are left untouched, so the seed is safe to run
// on every startup.
func Modules(ctx context.Context, db *gorm.DB, log *logger.Logger, path string) error {
  seedLog := log.With("service", "Seed")

  raw, err := os.ReadFile(path)
  if err != nil {
    return fmt.Errorf("read module catalogue: %w", err)
  }
  var cat catalogue
  if err := yaml.Unmarshal(raw, &cat); err != nil {
    return fmt.Errorf("parse module catalogue: %w", err)
  }
  if len(cat.Modules) == 0 {
    return fmt.Errorf("module catalogue %s is empty", path)
  }

  moduleRepo := repos.NewModuleRepo(db, log)
  for _, entry := range cat.Modules {
    module := &types.Module{
      ID:                  entry.ID,
      Name:                entry.Name,
      Description:         entry.Description,
      Category:            entry.Category,
      AssessmentType:      entry.AssessmentType,
      TimeLimitMinutes:    entry.TimeLimitMinutes,
      CooldownHours:       entry.CooldownHours,
      MaxAttemptsPerMonth: entry.MaxAttemptsPerMonth,
    }
    if err := moduleRepo.CreateIfMissing(ctx, nil, module); err != nil {
      return fmt.Errorf("seed module %q: %w", entry.Name, err)
    }
  }

  seedLog.Info("Module catalogue seeded", "modules", len(cat.Modules))
  return nil
}
