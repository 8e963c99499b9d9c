package migration

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGooseDialect(t *testing.T) {
	cases := map[string]string{
		"postgres": "postgres",
		"pg":       "postgres",
		"mysql":    "mysql",
		"sqlite":   "sqlite3",
		"sqlite3":  "sqlite3",
	}
	for driver, want := range cases {
		got, err := gooseDialect(driver)
		require.NoError(t, err, driver)
		assert.Equal(t, want, got, driver)
	}

	_, err := gooseDialect("oracle")
	assert.Error(t, err)
}

func TestEmbeddedMigrationsPerDialect(t *testing.T) {
	for _, dialect := range []string{"postgres", "mysql", "sqlite3"} {
		entries, err := fs.ReadDir(migrations, migrationsDir(dialect))
		require.NoError(t, err, dialect)
		assert.Len(t, entries, 3, dialect)
	}
}

func TestIsNoMigrationErr(t *testing.T) {
	assert.False(t, isNoMigrationErr(nil))
	assert.True(t, isNoMigrationErr(goose.ErrNoNextVersion))
	assert.True(t, isNoMigrationErr(errors.New("no migrations found")))
	assert.False(t, isNoMigrationErr(errors.New("syntax error")))
}
