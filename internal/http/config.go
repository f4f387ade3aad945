package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/auth"
	"github.com/mrlokans/authgate/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Database       *database.Database
	AuthController *auth.AuthController
	Logger         *zap.Logger

	// Authenticator guards the audit endpoints; AuditEvents may be nil when
	// auditing is disabled.
	Authenticator *auth.Authenticator
	AuditEvents   AuditEventReader

	// HSTSMaxAge enables Strict-Transport-Security when positive (seconds)
	HSTSMaxAge int

	// Application info
	Version string
}
