package config

const (
	// DefaultDatabasePath is the default path for the SQLite user database
	DefaultDatabasePath = "./authgate.db"

	// DefaultTokenIssuer is written to the "iss" claim of issued tokens
	DefaultTokenIssuer = "authgate"

	// Field names the login form is expected to carry
	DefaultUsernameField = "Username"
	DefaultPasswordField = "Password"

	// DefaultAuditCleanupSchedule prunes old audit events daily at 03:00
	DefaultAuditCleanupSchedule = "0 3 * * *"
)
