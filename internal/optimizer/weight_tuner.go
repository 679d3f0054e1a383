package optimizer

import (
	"context"
	"fmt"
	"math"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/scheduler"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/utils"
)

// OptimizationType represents the type of optimization suggested
type OptimizationType string

const (
	OptimizationReduceSessionLength OptimizationType = "reduce_session_length"
	OptimizationStartLater          OptimizationType = "start_later"
	OptimizationStartEarlier        OptimizationType = "start_earlier"
	OptimizationFavorGaps           OptimizationType = "favor_gaps"
	OptimizationFavorPriority       OptimizationType = "favor_priority"
)

// Optimization is a suggested change to one persisted scheduler setting.
type Optimization struct {
	Type           OptimizationType `json:"type"`
	Setting        string           `json:"setting"`
	Reason         string           `json:"reason"`
	CurrentValue   any              `json:"currentValue,omitempty"`
	SuggestedValue any              `json:"suggestedValue,omitempty"`
}

// WeightTuner reads check-in history and proposes scheduler setting changes.
type WeightTuner struct {
	store storage.Provider
}

func NewWeightTuner(store storage.Provider) *WeightTuner {
	return &WeightTuner{store: store}
}

// bucket tallies checked sessions in one category.
type bucket struct {
	done, skipped int
}

func (b bucket) checked() int { return b.done + b.skipped }

func (b bucket) adherence() float64 {
	if b.checked() == 0 {
		return 0
	}
	return float64(b.done) / float64(b.checked())
}

func (b bucket) skipRate() float64 {
	if b.checked() == 0 {
		return 0
	}
	return float64(b.skipped) / float64(b.checked())
}

// Analyze inspects checked records and returns suggestions. It never mutates
// settings. Fewer than constants.TunerMinSamples checked records yields nothing.
func Analyze(records []models.StudyPlanSessionRecord, settings models.Settings) ([]Optimization, error) {
	loc, err := utils.LocationFromSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}

	var all, morning, later, gapDriven, priorityDriven bucket
	for _, r := range records {
		if !r.Status.Checked() {
			continue
		}
		done := r.Status == models.SessionStatusDone
		tally := func(b *bucket) {
			if done {
				b.done++
			} else {
				b.skipped++
			}
		}

		tally(&all)
		if r.StartTime.In(loc).Hour() < 12 {
			tally(&morning)
		} else {
			tally(&later)
		}
		if settings.GapWeight*r.GapQualityScore >= settings.PriorityWeight*r.PriorityScore {
			tally(&gapDriven)
		} else {
			tally(&priorityDriven)
		}
	}

	if all.checked() < constants.TunerMinSamples {
		return nil, nil
	}

	var optimizations []Optimization
	minBucket := constants.TunerMinSamples / 2

	// Low overall adherence suggests sessions are too long to finish
	if rate := all.adherence(); rate < constants.TunerLowAdherence {
		suggested := int(float64(settings.DefaultSessionMinutes) * constants.TunerSessionReduction)
		suggested = max(suggested, settings.MinSessionMinutes)
		if suggested < settings.DefaultSessionMinutes {
			optimizations = append(optimizations, Optimization{
				Type:           OptimizationReduceSessionLength,
				Setting:        constants.SettingDefaultSessionMinutes,
				Reason:         fmt.Sprintf("only %.0f%% of %d checked sessions were completed", rate*100, all.checked()),
				CurrentValue:   settings.DefaultSessionMinutes,
				SuggestedValue: suggested,
			})
		}
	}

	if morning.checked() >= minBucket && later.checked() >= minBucket {
		skew := morning.skipRate() - later.skipRate()
		switch {
		case skew >= constants.TunerSkipSkewThreshold:
			next := settings.PreferredStartHour + 1
			if next <= constants.TunerLatestPreferredHour && next < settings.DayEndHour {
				optimizations = append(optimizations, Optimization{
					Type:    OptimizationStartLater,
					Setting: constants.SettingPreferredStartHour,
					Reason: fmt.Sprintf("%.0f%% of morning sessions were skipped vs %.0f%% later in the day",
						morning.skipRate()*100, later.skipRate()*100),
					CurrentValue:   settings.PreferredStartHour,
					SuggestedValue: next,
				})
			}
		case -skew >= constants.TunerSkipSkewThreshold:
			next := settings.PreferredStartHour - 1
			if next >= settings.DayStartHour {
				optimizations = append(optimizations, Optimization{
					Type:    OptimizationStartEarlier,
					Setting: constants.SettingPreferredStartHour,
					Reason: fmt.Sprintf("%.0f%% of afternoon and evening sessions were skipped vs %.0f%% in the morning",
						later.skipRate()*100, morning.skipRate()*100),
					CurrentValue:   settings.PreferredStartHour,
					SuggestedValue: next,
				})
			}
		}
	}

	if gapDriven.checked() >= minBucket && priorityDriven.checked() >= minBucket {
		diff := gapDriven.adherence() - priorityDriven.adherence()
		step := constants.TunerWeightStep
		switch {
		case diff >= constants.TunerAdherenceGapThreshold && settings.PriorityWeight-step >= step:
			optimizations = append(optimizations, Optimization{
				Type:    OptimizationFavorGaps,
				Setting: constants.SettingGapWeight,
				Reason: fmt.Sprintf("sessions placed for gap quality were completed %.0f%% of the time vs %.0f%% for priority-driven ones",
					gapDriven.adherence()*100, priorityDriven.adherence()*100),
				CurrentValue:   settings.GapWeight,
				SuggestedValue: round2(settings.GapWeight + step),
			})
		case -diff >= constants.TunerAdherenceGapThreshold && settings.GapWeight-step >= step:
			optimizations = append(optimizations, Optimization{
				Type:    OptimizationFavorPriority,
				Setting: constants.SettingGapWeight,
				Reason: fmt.Sprintf("priority-driven sessions were completed %.0f%% of the time vs %.0f%% for gap-driven ones",
					priorityDriven.adherence()*100, gapDriven.adherence()*100),
				CurrentValue:   settings.GapWeight,
				SuggestedValue: round2(settings.GapWeight - step),
			})
		}
	}

	return optimizations, nil
}

// Suggest analyzes the records selected by filter against the persisted settings.
func (wt *WeightTuner) Suggest(ctx context.Context, filter storage.SessionFilter) ([]Optimization, error) {
	settings, err := wt.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	records, err := wt.store.ListSessions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return Analyze(records, settings)
}

// Apply writes the suggested values into the persisted settings and returns them.
// A gap weight change moves the priority weight by the opposite amount.
func (wt *WeightTuner) Apply(ctx context.Context, optimizations []Optimization) (models.Settings, error) {
	settings, err := wt.store.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	for _, opt := range optimizations {
		if err := applyOne(&settings, opt); err != nil {
			return models.Settings{}, err
		}
		logger.Info("Applied optimization", "type", opt.Type, "setting", opt.Setting, "value", opt.SuggestedValue)
	}

	cfg, err := scheduler.ConfigFromSettings(settings)
	if err != nil {
		return models.Settings{}, err
	}
	if err := cfg.Validate(); err != nil {
		return models.Settings{}, err
	}
	if err := wt.store.SaveSettings(ctx, settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}

func applyOne(settings *models.Settings, opt Optimization) error {
	value, ok := toFloat(opt.SuggestedValue)
	if !ok {
		return fmt.Errorf("%w: %s has no numeric suggested value", errors.ErrInvalidConfig, opt.Type)
	}

	switch opt.Setting {
	case constants.SettingDefaultSessionMinutes:
		settings.DefaultSessionMinutes = int(value)
	case constants.SettingPreferredStartHour:
		settings.PreferredStartHour = int(value)
	case constants.SettingGapWeight:
		delta := value - settings.GapWeight
		settings.GapWeight = round2(value)
		settings.PriorityWeight = round2(settings.PriorityWeight - delta)
	default:
		return fmt.Errorf("%w: unsupported setting %q", errors.ErrInvalidConfig, opt.Setting)
	}
	return nil
}

// toFloat accepts the numeric shapes a suggestion can take after a JSON round trip.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
