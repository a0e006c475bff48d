package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "gatherly",
		Password: "secret",
		Name:     "gatherly",
		Host:     "db.example.com",
		Port:     5433,
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=db.example.com")
	require.Contains(t, dsn, "port=5433")
	require.Contains(t, dsn, "dbname=gatherly")
	require.Contains(t, dsn, "password=secret")
	require.Contains(t, dsn, "sslmode=disable")

	_, err = buildPostgresDSN(Config{Host: "db.example.com"})
	require.Error(t, err)

	dsn, err = buildPostgresDSN(Config{DSN: "postgres://override"})
	require.NoError(t, err)
	require.Equal(t, "postgres://override", dsn)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "gatherly",
		Password: "secret",
		Name:     "gatherly",
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "gatherly:secret@tcp(127.0.0.1:3306)/gatherly?")
	require.Contains(t, dsn, "parseTime=True")

	_, err = buildMySQLDSN(Config{User: "gatherly"})
	require.Error(t, err)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	require.True(t, db.Migrator().HasTable("events"))
	require.True(t, db.Migrator().HasTable("event_participants"))
}
