package backups

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage/sqlite"
	"github.com/julianstephens/studyplan/internal/utils"
)

var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*cli.Context, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "studyplan.db")
	store := sqlite.NewStore(dbPath)
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })
	return &cli.Context{Store: store, Clock: utils.FixedClock{T: now}}, dbPath
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, _ := setupTestDB(t)

	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	require.NoError(t, (&BackupCreateCmd{}).Run(ctx))

	backups, err := ctx.Backups().List()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "studyplan-20260302-080000.db", filepath.Base(backups[0].Path))

	assert.NoError(t, (&BackupListCmd{}).Run(ctx))
}

func TestBackupRestoreCmd(t *testing.T) {
	ctx, dbPath := setupTestDB(t)
	bg := context.Background()

	_, err := ctx.Planner().AddDeadline(bg, models.Deadline{
		ID:       "essay",
		Course:   "HIST 110",
		Task:     "Essay",
		DueDate:  now.AddDate(0, 0, 3),
		Priority: models.PriorityHigh,
	})
	require.NoError(t, err)
	require.NoError(t, (&BackupCreateCmd{}).Run(ctx))

	require.NoError(t, ctx.Store.DeleteDeadline(bg, "essay"))

	require.NoError(t, (&BackupRestoreCmd{BackupFile: "studyplan-20260302-080000.db", Yes: true}).Run(ctx))

	restored := sqlite.NewStore(dbPath)
	require.NoError(t, restored.Load())
	defer restored.Close()

	d, err := restored.GetDeadline(bg, "essay")
	require.NoError(t, err)
	assert.Equal(t, "Essay", d.Task)

	backups, err := ctx.Backups().List()
	require.NoError(t, err)
	assert.Len(t, backups, 2, "restore snapshots the current database first")
}

func TestBackupRestoreCmd_Missing(t *testing.T) {
	ctx, _ := setupTestDB(t)
	err := (&BackupRestoreCmd{BackupFile: "nope.db", Yes: true}).Run(ctx)
	assert.ErrorContains(t, err, "backup file not found")
}

func TestResolveBackupPath(t *testing.T) {
	ctx, _ := setupTestDB(t)
	require.NoError(t, (&BackupCreateCmd{}).Run(ctx))
	dir := ctx.Backups().Dir()

	abs := filepath.Join(dir, "studyplan-20260302-080000.db")
	got, err := resolveBackupPath(abs, dir)
	require.NoError(t, err)
	assert.Equal(t, abs, got)

	got, err = resolveBackupPath("studyplan-20260302-080000.db", dir)
	require.NoError(t, err)
	assert.Equal(t, abs, got)

	_, err = resolveBackupPath(filepath.Join(dir, "missing.db"), dir)
	assert.Error(t, err)
}
