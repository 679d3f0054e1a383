package migration

import (
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/studyplan/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func mapFS(files map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, content := range files {
		out[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return out
}

func TestGetCurrentVersion(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{"001_test.sql": "CREATE TABLE test (id INTEGER);"}), DialectSQLite)

	version, err := runner.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	require.NoError(t, runner.SetVersion(5))
	version, err = runner.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 5, version)
}

func TestReadMigrationFiles(t *testing.T) {
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"003_another.sql": "CREATE TABLE test2 (id INTEGER);",
		"001_init.sql":    "CREATE TABLE test1 (id INTEGER);",
		"002_update.sql":  "ALTER TABLE test1 ADD COLUMN name TEXT;",
		"README.md":       "not a migration",
	}), DialectSQLite)

	got, err := runner.ReadMigrationFiles()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Migration{Version: 1, Name: "init", SQL: "CREATE TABLE test1 (id INTEGER);"}, got[0])
	assert.Equal(t, "update", got[1].Name)
	assert.Equal(t, 3, got[2].Version)
}

func TestReadMigrationFiles_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "no underscore", files: map[string]string{"001.sql": ""}},
		{name: "non-numeric version", files: map[string]string{"abc_init.sql": ""}},
		{name: "zero version", files: map[string]string{"000_init.sql": ""}},
		{name: "duplicate version", files: map[string]string{"001_a.sql": "", "001_b.sql": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(setupTestDB(t), mapFS(tt.files), DialectSQLite).ReadMigrationFiles()
			assert.Error(t, err)
		})
	}
}

func TestApplyMigrations(t *testing.T) {
	db := setupTestDB(t)
	files := map[string]string{
		"001_init.sql":  "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
		"002_posts.sql": "CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER, content TEXT);",
	}
	runner := NewRunner(db, mapFS(files), DialectSQLite)

	var logs []string
	count, err := runner.ApplyMigrations(func(msg string) { logs = append(logs, msg) })
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NotEmpty(t, logs)

	status, err := runner.Status()
	require.NoError(t, err)
	assert.True(t, status.UpToDate())
	assert.Equal(t, 2, status.Current)

	_, err = db.Exec("INSERT INTO posts (user_id, content) VALUES (1, 'hello')")
	assert.NoError(t, err)

	// Re-running is a no-op
	count, err = runner.ApplyMigrations(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// A new file is picked up incrementally
	files["003_tags.sql"] = "CREATE TABLE tags (id INTEGER PRIMARY KEY);"
	runner = NewRunner(db, mapFS(files), DialectSQLite)
	count, err = runner.ApplyMigrations(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyMigrations_RollsBackFailure(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{
		"001_init.sql":   "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABLE broken (id INTEGER); THIS IS NOT SQL;",
	}), DialectSQLite)

	count, err := runner.ApplyMigrations(nil)
	require.Error(t, err)
	assert.Equal(t, 1, count)

	version, err := runner.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestValidateVersion_NewerDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{"001_init.sql": "CREATE TABLE a (id INTEGER);"}), DialectSQLite)
	require.NoError(t, runner.SetVersion(7))

	assert.Error(t, runner.ValidateVersion())
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	require.NoError(t, err)

	db := setupTestDB(t)
	runner := NewRunner(db, sub, DialectSQLite)
	_, err = runner.ApplyMigrations(nil)
	require.NoError(t, err)

	for _, table := range []string{"settings", "deadlines", "lectures", "study_sessions", "suggestion_mutes"} {
		var n int
		require.NoError(t, db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&n))
		assert.Equal(t, 1, n, "table %s", table)
	}
}

func TestEmbeddedMigrationsMatch(t *testing.T) {
	sqliteFS, err := fs.Sub(migrations.FS, "sqlite")
	require.NoError(t, err)
	postgresFS, err := fs.Sub(migrations.FS, "postgres")
	require.NoError(t, err)

	lite, err := NewRunner(nil, sqliteFS, DialectSQLite).ReadMigrationFiles()
	require.NoError(t, err)
	pg, err := NewRunner(nil, postgresFS, DialectPostgres).ReadMigrationFiles()
	require.NoError(t, err)

	require.Equal(t, len(lite), len(pg))
	for i := range lite {
		assert.Equal(t, lite[i].Version, pg[i].Version)
		assert.Equal(t, lite[i].Name, pg[i].Name)
	}
}
