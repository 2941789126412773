package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cardswap.backend/internal/config"
)

func testConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable",
		MaxOpenConns: 4, MaxIdleConns: 2,
	}
}

func openSQLite(_ string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
}

func TestNewConnection_PingFailure(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "x",
		Password: "x",
		DBName:   "x",
		SSLMode:  "disable",
	}

	db, err := NewConnection(cfg)
	require.Error(t, err)
	require.Nil(t, db)
}

func TestNewConnection_OpenAndPingHooks(t *testing.T) {
	origOpen := gormOpen
	origPing := dbPing
	t.Cleanup(func() {
		gormOpen = origOpen
		dbPing = origPing
	})

	gormOpen = func(string) (*gorm.DB, error) {
		return nil, errors.New("open failed")
	}
	db, err := NewConnection(testConfig())
	require.Error(t, err)
	require.Nil(t, db)
	require.Contains(t, err.Error(), "failed to open database")

	gormOpen = openSQLite
	dbPing = func(*sql.DB) error { return errors.New("refused") }
	db, err = NewConnection(testConfig())
	require.Error(t, err)
	require.Nil(t, db)
	require.Contains(t, err.Error(), "failed to ping database")

	dbPing = func(*sql.DB) error { return nil }
	db, err = NewConnection(testConfig())
	require.NoError(t, err)
	require.NotNil(t, db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.Equal(t, 4, sqlDB.Stats().MaxOpenConnections)
	t.Cleanup(func() { _ = sqlDB.Close() })
}

func TestMigrate_CreatesTables(t *testing.T) {
	db, err := openSQLite("")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	require.True(t, db.Migrator().HasTable("trades"))
	require.True(t, db.Migrator().HasTable("fraud_flags"))
}
