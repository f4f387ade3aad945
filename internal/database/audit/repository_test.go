package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/authgate/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))
	return db
}

func TestRepository_LogEvent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	event := &entities.AuditEvent{
		UserID:    1,
		Username:  "alice",
		EventType: entities.AuditEventLogin,
		Strategy:  "local",
		Status:    entities.AuditStatusSuccess,
	}

	require.NoError(t, repo.LogEvent(context.Background(), event))
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventToken,
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		}))
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
			UserID:    2,
			EventType: entities.AuditEventLogin,
			Status:    entities.AuditStatusRejected,
		}))
	}

	t.Run("get all events", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, 0, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 20)
	})

	t.Run("filter by user", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, 1, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		for _, e := range events {
			assert.Equal(t, uint(1), e.UserID)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page1, _, err := repo.GetEvents(ctx, 1, 5, 0)
		require.NoError(t, err)
		page2, _, err := repo.GetEvents(ctx, 1, 5, 5)
		require.NoError(t, err)

		require.Len(t, page1, 5)
		require.Len(t, page2, 5)
		assert.True(t, page1[4].CreatedAt.After(page2[0].CreatedAt))
	})

	t.Run("default limit", func(t *testing.T) {
		events, _, err := repo.GetEvents(ctx, 0, 0, -1)
		require.NoError(t, err)
		assert.Len(t, events, 20)
	})
}

func TestRepository_CountRecentFailures(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now()

	events := []entities.AuditEvent{
		{Username: "alice", EventType: entities.AuditEventLogin, Status: entities.AuditStatusRejected, CreatedAt: now.Add(-time.Minute)},
		{Username: "alice", EventType: entities.AuditEventLogin, Status: entities.AuditStatusFailed, CreatedAt: now.Add(-2 * time.Minute)},
		{Username: "alice", EventType: entities.AuditEventLogin, Status: entities.AuditStatusSuccess, CreatedAt: now.Add(-3 * time.Minute)},
		{Username: "alice", EventType: entities.AuditEventLogin, Status: entities.AuditStatusRejected, CreatedAt: now.Add(-2 * time.Hour)},
		{Username: "bob", EventType: entities.AuditEventLogin, Status: entities.AuditStatusRejected, CreatedAt: now.Add(-time.Minute)},
	}
	for i := range events {
		require.NoError(t, repo.LogEvent(ctx, &events[i]))
	}

	count, err := repo.CountRecentFailures(ctx, "alice", now.Add(-time.Hour))

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	for _, age := range []time.Duration{time.Hour, 40 * 24 * time.Hour, 100 * 24 * time.Hour} {
		require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
			EventType: entities.AuditEventLogin,
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(-age),
		}))
	}

	deleted, err := repo.DeleteOldEvents(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, total, err := repo.GetEvents(ctx, 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
