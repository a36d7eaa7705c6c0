// Package dbtest swaps db.DB for a gorm connection backed by go-sqlmock.
package dbtest

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/safein/safein-server/db"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Setup points db.DB at a mocked postgres connection for the duration of t
// and verifies every expectation was met on cleanup. Queries are matched as
// regular expressions. Writes run outside gorm's implicit transaction so
// tests only expect Begin/Commit for explicit transactions.
func Setup(t testing.TB) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	prev := db.DB
	db.DB = conn
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.DB = prev
		_ = sqlDB.Close()
	})
	return mock
}
