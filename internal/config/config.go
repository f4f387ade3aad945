package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// MinJWTSecretLength is the minimum accepted length of AUTH_JWT_SECRET in bytes.
const MinJWTSecretLength = 32

var (
	ErrJWTSecretRequired = errors.New("AUTH_JWT_SECRET is required")
	ErrJWTSecretTooShort = fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", MinJWTSecretLength)
	ErrUnknownDBDriver   = errors.New("unknown database driver")
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Audit
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver DatabaseDriver
		Path   string // SQLite file path
		DSN    string // PostgreSQL DSN
	}
	Auth struct {
		JWTSecret   string
		TokenExpiry time.Duration
		TokenIssuer string
		BcryptCost  int

		// Request field names read by the local strategy
		UsernameField string
		PasswordField string
	}
	Audit struct {
		Enabled         bool
		RetentionDays   int
		CleanupSchedule string // 5-field cron expression

		// Repeated login failures within FailureWindow are logged as a warning
		FailureThreshold int
		FailureWindow    time.Duration
	}
	Log struct {
		Level       string
		Development bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	// Auth defaults. The JWT secret deliberately has none.
	v.SetDefault("auth_token_expiry", "168h") // 7 days
	v.SetDefault("auth_token_issuer", DefaultTokenIssuer)
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_username_field", DefaultUsernameField)
	v.SetDefault("auth_password_field", DefaultPasswordField)

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 90)
	v.SetDefault("audit_cleanup_schedule", DefaultAuditCleanupSchedule)
	v.SetDefault("audit_failure_threshold", 5)
	v.SetDefault("audit_failure_window", "15m")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: Auth{
			JWTSecret:     v.GetString("AUTH_JWT_SECRET"),
			TokenExpiry:   v.GetDuration("AUTH_TOKEN_EXPIRY"),
			TokenIssuer:   v.GetString("AUTH_TOKEN_ISSUER"),
			BcryptCost:    v.GetInt("AUTH_BCRYPT_COST"),
			UsernameField: v.GetString("AUTH_USERNAME_FIELD"),
			PasswordField: v.GetString("AUTH_PASSWORD_FIELD"),
		},
		Audit: Audit{
			Enabled:          v.GetBool("AUDIT_ENABLED"),
			RetentionDays:    v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule:  v.GetString("AUDIT_CLEANUP_SCHEDULE"),
			FailureThreshold: v.GetInt("AUDIT_FAILURE_THRESHOLD"),
			FailureWindow:    v.GetDuration("AUDIT_FAILURE_WINDOW"),
		},
		Log: Log{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
	}
}

// Validate reports configuration that must stop the process from starting.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrJWTSecretRequired
	}
	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		return ErrJWTSecretTooShort
	}

	if c.Audit.Enabled && c.Audit.RetentionDays < 0 {
		return errors.New("AUDIT_RETENTION_DAYS must not be negative")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("DATABASE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDBDriver, c.Database.Driver)
	}

	return nil
}
