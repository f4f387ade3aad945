package auth

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/authgate/internal/database/users"
	"github.com/mrlokans/authgate/internal/entities"
)

const (
	testSecret   = "test-secret-0123456789abcdefghijklmnop"
	testIssuer   = "authgate-test"
	testPassword = "correct horse"
	testCost     = 4 // Low cost for faster tests
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRepo(t *testing.T) *users.Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entities.User{}))
	return users.NewRepository(db)
}

func createTestUser(t *testing.T, repo *users.Repository, username, password string) *entities.User {
	t.Helper()

	hash, err := HashPassword(password, testCost)
	require.NoError(t, err)

	user := &entities.User{Username: username, PasswordHash: hash, Role: entities.UserRoleUser}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec([]byte(testSecret), time.Hour, testIssuer)
	require.NoError(t, err)
	return codec
}

// stubStore returns fixed results and counts lookups.
type stubStore struct {
	user  *entities.User
	err   error
	calls int
}

func (s *stubStore) FindByUsername(context.Context, string) (*entities.User, error) {
	s.calls++
	return s.user, s.err
}

func (s *stubStore) FindByID(context.Context, uint) (*entities.User, error) {
	s.calls++
	return s.user, s.err
}
