package scheduler

import (
	"fmt"
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/utils"
)

// ScoringWeights balances gap quality against deadline priority.
// They do not need to sum to 1; the overall score divides by their sum.
type ScoringWeights struct {
	GapWeight      float64 `json:"gapWeight"`
	PriorityWeight float64 `json:"priorityWeight"`
}

func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		GapWeight:      constants.DefaultGapWeight,
		PriorityWeight: constants.DefaultPriorityWeight,
	}
}

func (w ScoringWeights) Validate() error {
	if w.GapWeight < 0 || w.PriorityWeight < 0 {
		return fmt.Errorf("%w: weights must be non-negative (gap=%g, priority=%g)", errors.ErrInvalidConfig, w.GapWeight, w.PriorityWeight)
	}
	if w.GapWeight+w.PriorityWeight == 0 {
		return fmt.Errorf("%w: at least one weight must be positive", errors.ErrInvalidConfig)
	}
	return nil
}

// Config is every tunable the scheduler reads. A nil Location means UTC.
type Config struct {
	DayStartHour          int
	DayEndHour            int
	PreferredStartHour    int
	MinSessionMinutes     int
	DefaultSessionMinutes int
	MaxSessionMinutes     int
	StepMinutes           int
	MinGapMinutes         int
	SpacingBufferMinutes  int
	DefaultHorizonDays    int
	MaxHorizonDays        int
	Weights               ScoringWeights
	Location              *time.Location
}

func DefaultConfig() Config {
	cfg, _ := ConfigFromSettings(models.DefaultSettings())
	cfg.Location = time.UTC
	return cfg
}

// ConfigFromSettings builds a Config from persisted settings, resolving the timezone.
func ConfigFromSettings(s models.Settings) (Config, error) {
	cfg := Config{
		DayStartHour:          s.DayStartHour,
		DayEndHour:            s.DayEndHour,
		PreferredStartHour:    s.PreferredStartHour,
		MinSessionMinutes:     s.MinSessionMinutes,
		DefaultSessionMinutes: s.DefaultSessionMinutes,
		MaxSessionMinutes:     s.MaxSessionMinutes,
		StepMinutes:           s.StepMinutes,
		MinGapMinutes:         s.MinGapMinutes,
		SpacingBufferMinutes:  s.SpacingBufferMinutes,
		DefaultHorizonDays:    s.DefaultHorizonDays,
		MaxHorizonDays:        s.MaxHorizonDays,
		Weights: ScoringWeights{
			GapWeight:      s.GapWeight,
			PriorityWeight: s.PriorityWeight,
		},
	}
	loc, err := utils.LocationFromSettings(s)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	cfg.Location = loc
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DayStartHour < 0 || c.DayEndHour > 24 || c.DayStartHour >= c.DayEndHour {
		return fmt.Errorf("%w: day hours must satisfy 0 <= start < end <= 24 (got %d-%d)", errors.ErrInvalidConfig, c.DayStartHour, c.DayEndHour)
	}
	if c.PreferredStartHour < 0 || c.PreferredStartHour > 23 {
		return fmt.Errorf("%w: preferred start hour %d out of range", errors.ErrInvalidConfig, c.PreferredStartHour)
	}
	if c.MinSessionMinutes <= 0 {
		return fmt.Errorf("%w: minimum session must be positive", errors.ErrInvalidConfig)
	}
	if c.DefaultSessionMinutes < c.MinSessionMinutes || c.MaxSessionMinutes < c.DefaultSessionMinutes {
		return fmt.Errorf("%w: session lengths must satisfy min <= default <= max (got %d/%d/%d)",
			errors.ErrInvalidConfig, c.MinSessionMinutes, c.DefaultSessionMinutes, c.MaxSessionMinutes)
	}
	if c.StepMinutes <= 0 {
		return fmt.Errorf("%w: step must be positive", errors.ErrInvalidConfig)
	}
	if c.MinGapMinutes < 0 || c.SpacingBufferMinutes < 0 {
		return fmt.Errorf("%w: gap and spacing minutes must be non-negative", errors.ErrInvalidConfig)
	}
	if c.MaxHorizonDays <= 0 || c.DefaultHorizonDays <= 0 || c.DefaultHorizonDays > c.MaxHorizonDays {
		return fmt.Errorf("%w: horizon days must satisfy 0 < default <= max (got %d/%d)", errors.ErrInvalidConfig, c.DefaultHorizonDays, c.MaxHorizonDays)
	}
	return c.Weights.Validate()
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
