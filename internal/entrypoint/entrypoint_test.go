package entrypoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		HTTP:     config.HTTP{Host: "127.0.0.1", Port: 0},
		Global:   config.Global{ShutdownTimeoutInSeconds: 1},
		Database: config.Database{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "auth.db")},
		Auth: config.Auth{
			JWTSecret:     strings.Repeat("s", config.MinJWTSecretLength),
			TokenExpiry:   time.Hour,
			TokenIssuer:   config.DefaultTokenIssuer,
			BcryptCost:    4,
			UsernameField: config.DefaultUsernameField,
			PasswordField: config.DefaultPasswordField,
		},
	}
}

func TestBuild_WiresLoginFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	require.NoError(t, cfg.Validate())

	components, err := Build(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { components.Close() })

	_, err = components.Service.Register(context.Background(), "alice", "", "correct horse")
	require.NoError(t, err)

	router := components.NewRouter(zap.NewNop(), "test")

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"Username":"alice","Password":"correct horse"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"token"`)
}

func TestBuild_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "oracle"

	_, err := Build(cfg, zap.NewNop())

	assert.ErrorIs(t, err, config.ErrUnknownDBDriver)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, time.Second, zap.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_ListenError(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}

	err := Serve(context.Background(), srv, time.Second, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestBuild_AuditRecordsLogins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	cfg.Audit = config.Audit{
		Enabled:          true,
		RetentionDays:    30,
		CleanupSchedule:  config.DefaultAuditCleanupSchedule,
		FailureThreshold: 5,
		FailureWindow:    15 * time.Minute,
	}

	components, err := Build(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { components.Close() })
	require.NotNil(t, components.Audit)
	require.NotNil(t, components.Cleanup)

	_, err = components.Service.Register(context.Background(), "alice", "", "correct horse")
	require.NoError(t, err)

	router := components.NewRouter(zap.NewNop(), "test")

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"Username":"alice","Password":"correct horse"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	components.Audit.Wait()

	events, total, err := components.Audit.GetEvents(context.Background(), 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "alice", events[0].Username)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, components.Start(ctx))
	assert.True(t, components.Cleanup.IsRunning())
	assert.NotNil(t, components.Cleanup.NextRunTime())
}

func TestBuild_AuditDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	components, err := Build(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { components.Close() })

	assert.Nil(t, components.Audit)
	assert.Nil(t, components.Cleanup)

	w := httptest.NewRecorder()
	components.NewRouter(zap.NewNop(), "test").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me/events", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComponents_StartInvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audit = config.Audit{Enabled: true, RetentionDays: 30, CleanupSchedule: "every night"}

	components, err := Build(cfg, zap.NewNop())
	require.NoError(t, err)

	err = components.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")
	assert.False(t, components.Cleanup.IsRunning())
	require.NoError(t, components.Close())
	assert.Error(t, components.Database.Ping(context.Background()))
}

func TestComponents_StartWithoutAudit(t *testing.T) {
	components, err := Build(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { components.Close() })

	assert.NoError(t, components.Start(context.Background()))
}
