package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/authgate/internal/config"
	"github.com/mrlokans/authgate/internal/entities"
)

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(config.Database{Driver: config.DriverSQLite, Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.DB.Migrator().HasTable(&entities.User{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.AuditEvent{}))
	assert.NoError(t, db.Ping(context.Background()))
}

func TestNewDatabase_TranslatesDuplicateKey(t *testing.T) {
	db, err := NewDatabase(config.Database{Driver: config.DriverSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.DB.Create(&entities.User{Username: "alice", PasswordHash: "x"}).Error)
	err = db.DB.Create(&entities.User{Username: "alice", PasswordHash: "y"}).Error

	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	_, err := NewDatabase(config.Database{Driver: "oracle"}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnknownDBDriver)
}

func TestDatabase_PingAfterClose(t *testing.T) {
	db, err := NewDatabase(config.Database{Driver: config.DriverSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}
