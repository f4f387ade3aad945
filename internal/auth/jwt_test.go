package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mrlokans/authgate/internal/database/users"
	"github.com/mrlokans/authgate/internal/entities"
)

func TestJWTStrategy_Verify(t *testing.T) {
	repo := setupRepo(t)
	alice := createTestUser(t, repo, "alice", testPassword)
	strategy := NewJWTStrategy(repo, newTestCodec(t), zap.NewNop())

	t.Run("existing user", func(t *testing.T) {
		outcome := strategy.Verify(context.Background(), &Claims{UserID: alice.ID})

		require.Equal(t, OutcomeSuccess, outcome.Kind)
		assert.Equal(t, "alice", outcome.User.Username)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		outcome := strategy.Verify(context.Background(), &Claims{UserID: alice.ID + 100})

		assert.Equal(t, OutcomeError, outcome.Kind)
		assert.ErrorIs(t, outcome.Err, users.ErrNotFound)
		assert.Nil(t, outcome.User)
	})

	t.Run("nil claims", func(t *testing.T) {
		assert.Equal(t, Rejected(MsgInvalidToken), strategy.Verify(context.Background(), nil))
	})
}

func TestJWTStrategy_Verify_LogsResolvedUser(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store := &stubStore{user: &entities.User{ID: 42, Username: "alice"}}
	strategy := NewJWTStrategy(store, newTestCodec(t), zap.New(core))

	ctx := WithRequestID(context.Background(), "req-42")
	outcome := strategy.Verify(ctx, &Claims{UserID: 42})

	require.True(t, outcome.OK())
	entries := logs.FilterField(zap.Uint("user_id", 42)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "token verified", entries[0].Message)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
}

func TestJWTStrategy_Verify_ZeroUserID(t *testing.T) {
	store := &stubStore{user: &entities.User{ID: 1}}
	strategy := NewJWTStrategy(store, newTestCodec(t), nil)

	assert.Equal(t, Rejected(MsgInvalidToken), strategy.Verify(context.Background(), &Claims{}))
	assert.Zero(t, store.calls)
}

func TestJWTStrategy_Verify_StoreFailure(t *testing.T) {
	cause := errors.New("database is locked")
	strategy := NewJWTStrategy(&stubStore{err: cause}, newTestCodec(t), nil)

	outcome := strategy.Verify(context.Background(), &Claims{UserID: 1})

	assert.Equal(t, OutcomeError, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, cause)
}

func TestJWTStrategy_AuthenticateHeader(t *testing.T) {
	codec := newTestCodec(t)
	user := &entities.User{ID: 9, Username: "alice"}
	token, err := codec.Issue(user)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		want       Outcome
		storeCalls int
	}{
		{"valid token", "Bearer " + token, Success(user), 1},
		{"missing header", "", Rejected(MsgNoToken), 0},
		{"wrong scheme", "Token " + token, Rejected(MsgNoToken), 0},
		{"tampered token", "Bearer " + token + "x", Rejected(MsgInvalidToken), 0},
		{"garbage token", "Bearer garbage", Rejected(MsgInvalidToken), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{user: user}
			strategy := NewJWTStrategy(store, codec, nil)

			got := strategy.AuthenticateHeader(context.Background(), tt.header)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.storeCalls, store.calls)
		})
	}
}

func TestStrategies_ConsistentAcrossPaths(t *testing.T) {
	repo := setupRepo(t)
	alice := createTestUser(t, repo, "alice", testPassword)
	codec := newTestCodec(t)

	local := NewLocalStrategy(repo, nil, LocalOptions{})
	bearer := NewJWTStrategy(repo, codec, nil)

	byPassword := local.Verify(context.Background(), "alice", testPassword)
	require.True(t, byPassword.OK())

	token, err := codec.Issue(byPassword.User)
	require.NoError(t, err)
	byToken := bearer.AuthenticateHeader(context.Background(), "Bearer "+token)
	require.True(t, byToken.OK())

	assert.Equal(t, alice.ID, byPassword.User.ID)
	assert.Equal(t, byPassword.User.ID, byToken.User.ID)
}
