package database

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/app", migrateURL("postgres://u:p@db:5432/app"))
	assert.Equal(t, "pgx5://u:p@db:5432/app?sslmode=require", migrateURL("postgresql://u:p@db:5432/app?sslmode=require"))
	assert.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}

func TestEmbeddedMigrations(t *testing.T) {
	up, err := fs.ReadFile(migrationsFS, "migrations/0001_create_invoices.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "serial_number TEXT NOT NULL UNIQUE")

	_, err = fs.ReadFile(migrationsFS, "migrations/0001_create_invoices.down.sql")
	require.NoError(t, err)
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	assert.Error(t, MigrateDown("postgres://localhost/none", 0))
}

func TestNewPostgresDB_RequiresURL(t *testing.T) {
	_, err := NewPostgresDB(context.Background(), "", PoolOptions{})
	assert.Error(t, err)
}

func TestApplyPoolOptions(t *testing.T) {
	config, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/app")
	require.NoError(t, err)
	defaultLifetime := config.MaxConnLifetime

	applyPoolOptions(config, PoolOptions{MaxConns: 8, MaxConnIdleTime: time.Minute})

	assert.Equal(t, int32(8), config.MaxConns)
	assert.Equal(t, time.Minute, config.MaxConnIdleTime)
	assert.Equal(t, defaultLifetime, config.MaxConnLifetime)
}
