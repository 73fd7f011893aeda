package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trix-studio/trix/pkg/trix/database"
	"github.com/trix-studio/trix/pkg/trix/models"
)

func TestConnect_SQLiteMigrates(t *testing.T) {
	db, err := database.Connect(database.DriverSQLite, ":memory:")
	require.NoError(t, err)

	for _, m := range database.Models() {
		assert.True(t, db.Migrator().HasTable(m), "table for %T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Like{}, "idx_like_pair"))
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := database.Connect("oracle", "")
	assert.Error(t, err)
}

func TestDSNFromEnv_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_HOSTNAME", "db")
	t.Setenv("DB_USERNAME", "trix")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("DB_DBNAME", "trix")
	t.Setenv("DB_SCHEMA", "public")

	driver, dsn, err := database.DSNFromEnv()
	require.NoError(t, err)
	assert.Equal(t, database.DriverPostgres, driver)
	assert.Equal(t, "postgres://trix:s3cret@db:5432/trix?search_path=public", dsn)
}

func TestDSNFromEnv_SQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "")

	driver, dsn, err := database.DSNFromEnv()
	require.NoError(t, err)
	assert.Equal(t, database.DriverSQLite, driver)
	assert.Equal(t, "trix.db", dsn)
}

func TestDSNFromEnv_MissingVars(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOSTNAME", "")

	_, _, err := database.DSNFromEnv()
	assert.Error(t, err)
}
