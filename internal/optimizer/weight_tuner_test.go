package optimizer

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/storage/sqlite"
)

var day = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func utcSettings() models.Settings {
	s := models.DefaultSettings()
	s.Timezone = "UTC"
	return s
}

// checked builds a checked record starting at the given hour on day n.
func checked(n, hour int, status models.SessionStatus, gap, priority float64) models.StudyPlanSessionRecord {
	start := day.AddDate(0, 0, n).Add(time.Duration(hour) * time.Hour)
	r := models.NewSessionRecord(models.StudyPlanSession{
		ID:              fmt.Sprintf("s-%d-%d-%s", n, hour, status),
		DeadlineID:      "d1",
		Course:          "MATH 201",
		Task:            "Problem set",
		Priority:        models.PriorityHigh,
		StartTime:       start,
		EndTime:         start.Add(50 * time.Minute),
		DurationMinutes: 50,
		GapQualityScore: gap,
		PriorityScore:   priority,
	}, day)
	r.Status = status
	at := r.EndTime
	r.CheckedAt = &at
	return r
}

func findType(opts []Optimization, typ OptimizationType) *Optimization {
	for i := range opts {
		if opts[i].Type == typ {
			return &opts[i]
		}
	}
	return nil
}

func TestAnalyze_TooFewSamples(t *testing.T) {
	records := []models.StudyPlanSessionRecord{
		checked(0, 9, models.SessionStatusSkipped, 0.5, 0.5),
		checked(1, 9, models.SessionStatusSkipped, 0.5, 0.5),
	}
	opts, err := Analyze(records, utcSettings())
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestAnalyze_PendingRecordsIgnored(t *testing.T) {
	var records []models.StudyPlanSessionRecord
	for i := 0; i < 10; i++ {
		r := checked(i, 9, models.SessionStatusPending, 0.5, 0.5)
		r.CheckedAt = nil
		records = append(records, r)
	}
	opts, err := Analyze(records, utcSettings())
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestAnalyze_LowAdherenceReducesSessionLength(t *testing.T) {
	var records []models.StudyPlanSessionRecord
	for i := 0; i < 6; i++ {
		status := models.SessionStatusSkipped
		if i < 2 {
			status = models.SessionStatusDone
		}
		// Alternate morning and evening so no skew suggestion fires.
		hour := 9
		if i%2 == 1 {
			hour = 18
		}
		records = append(records, checked(i, hour, status, 0.5, 0.5))
	}

	opts, err := Analyze(records, utcSettings())
	require.NoError(t, err)

	opt := findType(opts, OptimizationReduceSessionLength)
	require.NotNil(t, opt)
	assert.Equal(t, constants.SettingDefaultSessionMinutes, opt.Setting)
	assert.Equal(t, 50, opt.CurrentValue)
	assert.Equal(t, 37, opt.SuggestedValue)
	assert.Contains(t, opt.Reason, "33%")
}

func TestAnalyze_SessionLengthFloorsAtMinimum(t *testing.T) {
	settings := utcSettings()
	settings.DefaultSessionMinutes = settings.MinSessionMinutes

	var records []models.StudyPlanSessionRecord
	for i := 0; i < 6; i++ {
		records = append(records, checked(i, 9+i%2*9, models.SessionStatusSkipped, 0.5, 0.5))
	}
	opts, err := Analyze(records, settings)
	require.NoError(t, err)
	assert.Nil(t, findType(opts, OptimizationReduceSessionLength))
}

func TestAnalyze_MorningSkipsMoveStartLater(t *testing.T) {
	var records []models.StudyPlanSessionRecord
	for i := 0; i < 4; i++ {
		records = append(records, checked(i, 8, models.SessionStatusSkipped, 0.5, 0.5))
		records = append(records, checked(i, 15, models.SessionStatusDone, 0.5, 0.5))
	}

	opts, err := Analyze(records, utcSettings())
	require.NoError(t, err)

	opt := findType(opts, OptimizationStartLater)
	require.NotNil(t, opt)
	assert.Equal(t, 9, opt.CurrentValue)
	assert.Equal(t, 10, opt.SuggestedValue)
	assert.Nil(t, findType(opts, OptimizationStartEarlier))
}

func TestAnalyze_EveningSkipsMoveStartEarlier(t *testing.T) {
	var records []models.StudyPlanSessionRecord
	for i := 0; i < 4; i++ {
		records = append(records, checked(i, 9, models.SessionStatusDone, 0.5, 0.5))
		records = append(records, checked(i, 20, models.SessionStatusSkipped, 0.5, 0.5))
	}

	opts, err := Analyze(records, utcSettings())
	require.NoError(t, err)

	opt := findType(opts, OptimizationStartEarlier)
	require.NotNil(t, opt)
	assert.Equal(t, 8, opt.SuggestedValue)
}

func TestAnalyze_StartLaterRespectsCap(t *testing.T) {
	settings := utcSettings()
	settings.PreferredStartHour = constants.TunerLatestPreferredHour

	var records []models.StudyPlanSessionRecord
	for i := 0; i < 4; i++ {
		records = append(records, checked(i, 8, models.SessionStatusSkipped, 0.5, 0.5))
		records = append(records, checked(i, 15, models.SessionStatusDone, 0.5, 0.5))
	}
	opts, err := Analyze(records, settings)
	require.NoError(t, err)
	assert.Nil(t, findType(opts, OptimizationStartLater))
}

func TestAnalyze_WeightShift(t *testing.T) {
	t.Run("gap-driven sessions stick better", func(t *testing.T) {
		var records []models.StudyPlanSessionRecord
		for i := 0; i < 4; i++ {
			// 0.4*0.9 >= 0.6*0.3: gap-driven, completed
			records = append(records, checked(i, 9+i%2*9, models.SessionStatusDone, 0.9, 0.3))
			// 0.4*0.2 < 0.6*0.9: priority-driven, mostly skipped
			status := models.SessionStatusSkipped
			if i == 0 {
				status = models.SessionStatusDone
			}
			records = append(records, checked(i, 10+i%2*9, status, 0.2, 0.9))
		}

		opts, err := Analyze(records, utcSettings())
		require.NoError(t, err)

		opt := findType(opts, OptimizationFavorGaps)
		require.NotNil(t, opt)
		assert.Equal(t, 0.4, opt.CurrentValue)
		assert.Equal(t, 0.5, opt.SuggestedValue)
		assert.Nil(t, findType(opts, OptimizationFavorPriority))
	})

	t.Run("priority-driven sessions stick better", func(t *testing.T) {
		var records []models.StudyPlanSessionRecord
		for i := 0; i < 4; i++ {
			records = append(records, checked(i, 9+i%2*9, models.SessionStatusSkipped, 0.9, 0.3))
			records = append(records, checked(i, 10+i%2*9, models.SessionStatusDone, 0.2, 0.9))
		}

		opts, err := Analyze(records, utcSettings())
		require.NoError(t, err)

		opt := findType(opts, OptimizationFavorPriority)
		require.NotNil(t, opt)
		assert.Equal(t, 0.3, opt.SuggestedValue)
	})
}

func TestAnalyze_InvalidTimezone(t *testing.T) {
	settings := utcSettings()
	settings.Timezone = "Mars/Olympus"
	_, err := Analyze(nil, settings)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestWeightTuner_SuggestAndApply(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "studyplan.db"))
	require.NoError(t, store.Init())
	defer store.Close()

	ctx := context.Background()
	settings := utcSettings()
	require.NoError(t, store.SaveSettings(ctx, settings))

	var records []models.StudyPlanSessionRecord
	for i := 0; i < 4; i++ {
		records = append(records, checked(i, 8, models.SessionStatusPending, 0.5, 0.5))
		records = append(records, checked(i, 15, models.SessionStatusPending, 0.5, 0.5))
	}
	for i := range records {
		records[i].CheckedAt = nil
	}
	_, err := store.SaveSessions(ctx, records)
	require.NoError(t, err)
	for _, r := range records {
		status := models.SessionStatusDone
		if r.StartTime.Hour() == 8 {
			status = models.SessionStatusSkipped
		}
		_, err := store.CheckInSession(ctx, r.ID, models.CheckIn{Status: status, CheckedAt: r.EndTime})
		require.NoError(t, err)
	}

	tuner := NewWeightTuner(store)
	opts, err := tuner.Suggest(ctx, storage.SessionFilter{})
	require.NoError(t, err)
	require.NotNil(t, findType(opts, OptimizationStartLater))

	updated, err := tuner.Apply(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.PreferredStartHour)

	persisted, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, persisted.PreferredStartHour)
}

func TestApplyOne(t *testing.T) {
	settings := utcSettings()

	require.NoError(t, applyOne(&settings, Optimization{Setting: constants.SettingGapWeight, SuggestedValue: 0.5}))
	assert.Equal(t, 0.5, settings.GapWeight)
	assert.Equal(t, 0.5, settings.PriorityWeight)

	require.NoError(t, applyOne(&settings, Optimization{Setting: constants.SettingDefaultSessionMinutes, SuggestedValue: float64(40)}))
	assert.Equal(t, 40, settings.DefaultSessionMinutes)

	err := applyOne(&settings, Optimization{Setting: "timezone", SuggestedValue: 1})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	err = applyOne(&settings, Optimization{Setting: constants.SettingGapWeight, SuggestedValue: "high"})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}
