package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-mealgen/backend/config"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/models"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DBDriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "test.db")}

	db, err := Open(cfg)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", db.Dialector.Name())
	require.NoError(t, HealthCheck(context.Background(), db))

	require.NoError(t, RunMigrations(db, "unused"))
	assert.True(t, db.Migrator().HasTable(&models.MealTemplate{}))
	assert.True(t, db.Migrator().HasTable(&models.GlucoseReading{}))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_seed.sql", "001_init.sql", "001_init_rollback.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := MigrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_seed.sql"}, files)
	assert.Equal(t, "001", MigrationVersion(files[0]))

	_, err = MigrationFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestRedisOptions(t *testing.T) {
	opts, err := RedisOptions(&config.Config{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = RedisOptions(&config.Config{RedisHost: "ignored", RedisPort: "1", RedisURL: "redis://:secret@redis:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = RedisOptions(&config.Config{RedisURL: "http://not-redis"})
	assert.Error(t, err)
}
