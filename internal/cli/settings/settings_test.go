package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "studyplan.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })
	return &cli.Context{Store: store}
}

func ptr[T any](v T) *T { return &v }

func TestSettingsCmd_List(t *testing.T) {
	ctx := setupTestDB(t)
	assert.NoError(t, (&SettingsCmd{List: true}).Run(ctx))
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx := setupTestDB(t)

	cmd := &SettingsCmd{
		DayStart:       ptr(8),
		PreferredStart: ptr(10),
		GapWeight:      ptr(0.5),
		PriorityWeight: ptr(0.5),
		Timezone:       ptr("America/Chicago"),
	}
	require.NoError(t, cmd.Run(ctx))

	settings, err := ctx.Store.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, settings.DayStartHour)
	assert.Equal(t, 10, settings.PreferredStartHour)
	assert.Equal(t, 0.5, settings.GapWeight)
	assert.Equal(t, 0.5, settings.PriorityWeight)
	assert.Equal(t, "America/Chicago", settings.Timezone)
	assert.Equal(t, models.DefaultSettings().MaxSessionMinutes, settings.MaxSessionMinutes)
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx := setupTestDB(t)
	require.NoError(t, (&SettingsCmd{}).Run(ctx))

	settings, err := ctx.Store.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
}

func TestSettingsCmd_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  SettingsCmd
	}{
		{"day end before start", SettingsCmd{DayStart: ptr(20), DayEnd: ptr(8)}},
		{"bad timezone", SettingsCmd{Timezone: ptr("Mars/Olympus_Mons")}},
		{"min above max", SettingsCmd{MinSession: ptr(200)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupTestDB(t)
			err := tt.cmd.Run(ctx)
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)

			settings, err := ctx.Store.GetSettings(context.Background())
			require.NoError(t, err)
			assert.Equal(t, models.DefaultSettings(), settings)
		})
	}
}
