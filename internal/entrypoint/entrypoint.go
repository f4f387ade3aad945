package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/audit"
	"github.com/mrlokans/authgate/internal/auth"
	"github.com/mrlokans/authgate/internal/config"
	"github.com/mrlokans/authgate/internal/database"
	auditRepo "github.com/mrlokans/authgate/internal/database/audit"
	"github.com/mrlokans/authgate/internal/database/users"
	http_controllers "github.com/mrlokans/authgate/internal/http"
	"github.com/mrlokans/authgate/internal/logging"
	"github.com/mrlokans/authgate/internal/scheduler"
)

const hstsMaxAge = 31536000 // 1 year

// Components is the wired application graph shared by the server and the CLI.
type Components struct {
	Database      *database.Database
	Users         *users.Repository
	Codec         *auth.TokenCodec
	Service       *auth.Service
	Authenticator *auth.Authenticator

	// Audit and Cleanup are nil when auditing is disabled.
	Audit   *audit.Service
	Cleanup *scheduler.AuditCleanupScheduler
}

// Build opens the database and wires the auth components. The config must be valid.
func Build(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	db, err := database.NewDatabase(cfg.Database, logger.Named("database"))
	if err != nil {
		return nil, err
	}

	codec, err := auth.NewTokenCodec([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenExpiry, cfg.Auth.TokenIssuer)
	if err != nil {
		db.Close()
		return nil, err
	}

	repo := users.NewRepository(db.DB)
	authLogger := logger.Named("auth")

	authenticator := auth.NewAuthenticator(authLogger).
		Use(auth.NewLocalStrategy(repo, authLogger, auth.LocalOptions{
			UsernameField: cfg.Auth.UsernameField,
			PasswordField: cfg.Auth.PasswordField,
		})).
		Use(auth.NewJWTStrategy(repo, codec, authLogger))

	components := &Components{
		Database:      db,
		Users:         repo,
		Codec:         codec,
		Service:       auth.NewService(repo, codec, cfg.Auth, authLogger),
		Authenticator: authenticator,
	}

	if cfg.Audit.Enabled {
		auditLogger := logger.Named("audit")
		components.Audit = audit.NewService(auditRepo.NewRepository(db.DB), auditLogger, audit.Options{
			FailureThreshold: cfg.Audit.FailureThreshold,
			FailureWindow:    cfg.Audit.FailureWindow,
		})
		authenticator.Observe(components.Audit)
		components.Cleanup = scheduler.NewAuditCleanupScheduler(components.Audit, scheduler.AuditCleanupConfig{
			Schedule:      cfg.Audit.CleanupSchedule,
			RetentionDays: cfg.Audit.RetentionDays,
		}, auditLogger)
	}

	return components, nil
}

// Start launches background jobs; they stop when ctx is cancelled.
func (c *Components) Start(ctx context.Context) error {
	if c.Cleanup == nil {
		return nil
	}
	return c.Cleanup.Start(ctx)
}

// Close stops background work and releases the database.
func (c *Components) Close() error {
	if c.Cleanup != nil {
		c.Cleanup.Stop()
	}
	if c.Audit != nil {
		c.Audit.Wait()
	}
	return c.Database.Close()
}

// NewRouter builds the HTTP handler for the wired components.
func (c *Components) NewRouter(logger *zap.Logger, version string) *gin.Engine {
	cfg := http_controllers.RouterConfig{
		Database:       c.Database,
		AuthController: auth.NewAuthController(c.Service, c.Authenticator, logger.Named("auth")),
		Authenticator:  c.Authenticator,
		Logger:         logger.Named("http"),
		HSTSMaxAge:     hstsMaxAge,
		Version:        version,
	}
	if c.Audit != nil {
		cfg.AuditEvents = c.Audit
	}
	return http_controllers.NewRouter(cfg)
}

// Serve runs srv until ctx is cancelled, then shuts it down within timeout.
func Serve(ctx context.Context, srv *http.Server, timeout time.Duration, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}

// Run validates the config, wires the application and serves until SIGINT or SIGTERM.
// Any startup failure exits the process with status 1.
func Run(cfg *config.Config, version string) {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting authgate", zap.String("version", version))

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	components, err := Build(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer components.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           components.NewRouter(logger, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := components.Start(ctx); err != nil {
		logger.Error("failed to start background jobs", zap.Error(err))
		components.Close()
		logger.Sync()
		os.Exit(1)
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	if err := Serve(ctx, srv, timeout, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		components.Close()
		logger.Sync()
		os.Exit(1)
	}
}
