package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

// TestStore_Integration runs against a real database.
// Example: STUDYPLAN_TEST_POSTGRES="postgres://studyplan@localhost:5432/studyplan_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv(constants.EnvTestPostgres)
	if connStr == "" {
		t.Skip("STUDYPLAN_TEST_POSTGRES not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	require.NoError(t, store.Init())
	defer store.Close()

	ctx := context.Background()
	suffix := time.Now().Format("150405.000000")
	deadlineID := "pg-deadline-" + suffix
	sessionID := "pg-session-" + suffix
	base := time.Date(2031, 3, 3, 9, 0, 0, 0, time.UTC)

	t.Run("Settings", func(t *testing.T) {
		settings, err := store.GetSettings(ctx)
		require.NoError(t, err)

		settings.PreferredStartHour = 10
		require.NoError(t, store.SaveSettings(ctx, settings))

		updated, err := store.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, updated.PreferredStartHour)
	})

	t.Run("Deadlines", func(t *testing.T) {
		effort := 2.5
		require.NoError(t, store.AddDeadline(ctx, models.Deadline{
			ID: deadlineID, Course: "CHEM 101", Task: "Lab report",
			DueDate: base.Add(48 * time.Hour), Priority: models.PriorityMedium,
			EffortHoursRemaining: &effort,
		}))

		got, err := store.GetDeadline(ctx, deadlineID)
		require.NoError(t, err)
		assert.True(t, base.Add(48*time.Hour).Equal(got.DueDate))
		assert.Equal(t, 2.5, *got.EffortHoursRemaining)
	})

	t.Run("Sessions", func(t *testing.T) {
		record := models.NewSessionRecord(models.StudyPlanSession{
			ID: sessionID, DeadlineID: deadlineID, Course: "CHEM 101", Task: "Lab report",
			Priority: models.PriorityMedium, StartTime: base, EndTime: base.Add(time.Hour),
			DurationMinutes: 60, Score: 0.6, GapQualityScore: 0.7, PriorityScore: 0.5,
		}, base.Add(-time.Hour))

		n, err := store.SaveSessions(ctx, []models.StudyPlanSessionRecord{record, record})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		listed, err := store.ListSessions(ctx, storage.SessionFilter{DeadlineID: deadlineID})
		require.NoError(t, err)
		require.Len(t, listed, 1)

		level := 3
		checked, err := store.CheckInSession(ctx, sessionID, models.CheckIn{
			Status: models.SessionStatusSkipped, CheckedAt: base.Add(2 * time.Hour), EnergyLevel: &level,
		})
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusSkipped, checked.Status)

		_, err = store.CheckInSession(ctx, sessionID, models.CheckIn{Status: models.SessionStatusDone, CheckedAt: base})
		assert.ErrorIs(t, err, errors.ErrInvalidStateTransition)
	})

	t.Run("Cleanup", func(t *testing.T) {
		require.NoError(t, store.DeleteDeadline(ctx, deadlineID))
		_, err := store.GetSession(ctx, sessionID)
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})
}
