package adherence

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studyplan/internal/models"
)

var windowStart = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func record(id string, offset time.Duration, minutes int, status models.SessionStatus) models.StudyPlanSessionRecord {
	start := windowStart.Add(offset)
	r := models.NewSessionRecord(models.StudyPlanSession{
		ID:              id,
		DeadlineID:      "d1",
		Course:          "MATH 201",
		Task:            "Problem set",
		Priority:        models.PriorityHigh,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(minutes) * time.Minute),
		DurationMinutes: minutes,
	}, windowStart)
	r.Status = status
	if status.Checked() {
		checked := r.EndTime.Add(5 * time.Minute)
		r.CheckedAt = &checked
	}
	return r
}

func TestCompute_Empty(t *testing.T) {
	m := Compute(nil, windowStart, windowStart.AddDate(0, 0, 7), nil, 0)

	assert.Zero(t, m.SessionsPlanned)
	assert.Equal(t, 0.0, m.CompletionRate)
	assert.Equal(t, 0.0, m.AdherenceRate)
	assert.Equal(t, 0.0, m.CheckInTrends.AverageEnergy)
	assert.NotNil(t, m.CheckInTrends.RecentNotes)
	assert.Empty(t, m.CheckInTrends.RecentNotes)
}

func TestCompute_AdherenceRateZeroWithOnlyPending(t *testing.T) {
	records := []models.StudyPlanSessionRecord{
		record("a", 9*time.Hour, 50, models.SessionStatusPending),
		record("b", 13*time.Hour, 50, models.SessionStatusPending),
	}
	m := Compute(records, windowStart, windowStart.AddDate(0, 0, 7), nil, 0)

	assert.Equal(t, 2, m.SessionsPlanned)
	assert.Equal(t, 2, m.SessionsPending)
	assert.Equal(t, 100, m.MinutesPending)
	assert.Equal(t, 0.0, m.CompletionRate)
	assert.Equal(t, 0.0, m.AdherenceRate)
}

func TestCompute_CountsAndRates(t *testing.T) {
	done := record("a", 9*time.Hour, 60, models.SessionStatusDone)
	done.EnergyLevel, done.FocusLevel = ptr(5), ptr(4)
	skipped := record("b", 33*time.Hour, 50, models.SessionStatusSkipped)
	skipped.EnergyLevel, skipped.FocusLevel = ptr(1), ptr(3)
	done2 := record("c", 57*time.Hour, 25, models.SessionStatusDone)
	done2.FocusLevel = ptr(2)
	pending := record("d", 81*time.Hour, 50, models.SessionStatusPending)

	m := Compute([]models.StudyPlanSessionRecord{done, skipped, done2, pending}, windowStart, windowStart.AddDate(0, 0, 7), nil, 0)

	assert.Equal(t, 4, m.SessionsPlanned)
	assert.Equal(t, 2, m.SessionsDone)
	assert.Equal(t, 1, m.SessionsSkipped)
	assert.Equal(t, 1, m.SessionsPending)
	assert.Equal(t, 185, m.MinutesPlanned)
	assert.Equal(t, 85, m.MinutesDone)
	assert.Equal(t, 50, m.MinutesSkipped)
	assert.Equal(t, 50, m.MinutesPending)
	assert.Equal(t, 0.5, m.CompletionRate)
	assert.Equal(t, 0.6667, m.AdherenceRate)

	trends := m.CheckInTrends
	assert.Equal(t, 3, trends.CheckedCount)
	assert.Equal(t, 2, trends.EnergySamples)
	assert.Equal(t, 3.0, trends.AverageEnergy)
	assert.Equal(t, 3, trends.FocusSamples)
	assert.Equal(t, 3.0, trends.AverageFocus)
	assert.Equal(t, 1, trends.LowEnergyCount)
	assert.Equal(t, 1, trends.HighEnergyCount)
	assert.Equal(t, 1, trends.LowFocusCount)
	assert.Equal(t, 1, trends.HighFocusCount)
}

func TestCompute_LowAndHighAreCountedByDay(t *testing.T) {
	end := windowStart.AddDate(0, 0, 7)
	rated := func(id string, offset time.Duration, energy int) models.StudyPlanSessionRecord {
		r := record(id, offset, 50, models.SessionStatusDone)
		r.EnergyLevel = ptr(energy)
		return r
	}

	t.Run("day average decides", func(t *testing.T) {
		records := []models.StudyPlanSessionRecord{
			rated("a", 9*time.Hour, 1),
			rated("b", 14*time.Hour, 5),
			rated("c", 33*time.Hour, 1),
			rated("d", 38*time.Hour, 2),
			rated("e", 57*time.Hour, 4),
		}
		trends := Compute(records, windowStart, end, nil, 0).CheckInTrends
		assert.Equal(t, 5, trends.EnergySamples)
		// Mar 3 averages 3, Mar 4 averages 1.5, Mar 5 averages 4.
		assert.Equal(t, 1, trends.LowEnergyCount)
		assert.Equal(t, 1, trends.HighEnergyCount)
		assert.Zero(t, trends.LowFocusCount)
	})

	t.Run("days follow the given location", func(t *testing.T) {
		ny, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		records := []models.StudyPlanSessionRecord{
			rated("late", 27*time.Hour, 1),
			rated("next", 39*time.Hour, 2),
		}
		assert.Equal(t, 1, Compute(records, windowStart, end, time.UTC, 0).CheckInTrends.LowEnergyCount)
		// 03:00 UTC on Mar 4 is still Mar 3 in New York.
		assert.Equal(t, 2, Compute(records, windowStart, end, ny, 0).CheckInTrends.LowEnergyCount)
	})
}

func TestCompute_WindowIsHalfOpen(t *testing.T) {
	end := windowStart.AddDate(0, 0, 1)
	records := []models.StudyPlanSessionRecord{
		record("before", -time.Hour, 50, models.SessionStatusDone),
		record("first", 0, 50, models.SessionStatusDone),
		record("at-end", 24*time.Hour, 50, models.SessionStatusDone),
	}
	m := Compute(records, windowStart, end, nil, 0)
	assert.Equal(t, 1, m.SessionsPlanned)
}

func TestCompute_DuplicateRecordsCountedOnce(t *testing.T) {
	r := record("a", 9*time.Hour, 50, models.SessionStatusDone)
	m := Compute([]models.StudyPlanSessionRecord{r, r}, windowStart, windowStart.AddDate(0, 0, 7), nil, 0)
	assert.Equal(t, 1, m.SessionsPlanned)
	assert.Equal(t, 1, m.CheckInTrends.CheckedCount)
}

func TestCompute_RecentNotesNewestFirst(t *testing.T) {
	var records []models.StudyPlanSessionRecord
	for i := 0; i < 8; i++ {
		r := record(fmt.Sprintf("s%d", i), time.Duration(i)*6*time.Hour, 50, models.SessionStatusDone)
		r.CheckInNote = fmt.Sprintf("note %d", i)
		records = append(records, r)
	}
	quiet := record("quiet", 50*time.Hour, 50, models.SessionStatusSkipped)
	records = append(records, quiet)

	m := Compute(records, windowStart, windowStart.AddDate(0, 0, 7), nil, 3)

	require.Len(t, m.CheckInTrends.RecentNotes, 3)
	assert.Equal(t, "note 7", m.CheckInTrends.RecentNotes[0].Note)
	assert.Equal(t, "note 6", m.CheckInTrends.RecentNotes[1].Note)
	assert.Equal(t, "note 5", m.CheckInTrends.RecentNotes[2].Note)
	assert.Equal(t, "s7", m.CheckInTrends.RecentNotes[0].SessionID)

	all := Compute(records, windowStart, windowStart.AddDate(0, 0, 7), nil, 0)
	assert.Len(t, all.CheckInTrends.RecentNotes, 5)
}

func TestCompute_DoneCheckInRaisesHighEnergy(t *testing.T) {
	r := record("a", 9*time.Hour, 50, models.SessionStatusPending)
	end := windowStart.AddDate(0, 0, 7)

	before := Compute([]models.StudyPlanSessionRecord{r}, windowStart, end, nil, 0)

	r.Status = models.SessionStatusDone
	r.EnergyLevel = ptr(5)
	after := Compute([]models.StudyPlanSessionRecord{r}, windowStart, end, nil, 0)

	assert.Equal(t, 1, after.SessionsDone)
	assert.Greater(t, after.CompletionRate, before.CompletionRate)
	assert.Equal(t, before.CheckInTrends.HighEnergyCount+1, after.CheckInTrends.HighEnergyCount)
}

func TestNoteLimit(t *testing.T) {
	assert.Equal(t, 5, NoteLimit(0))
	assert.Equal(t, 5, NoteLimit(-1))
	assert.Equal(t, 12, NoteLimit(12))
	assert.Equal(t, 50, NoteLimit(500))
}

func TestDefaultWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	start, end := DefaultWindow(now)
	assert.Equal(t, time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), start)
	assert.Equal(t, now, end)
}
