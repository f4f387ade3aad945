// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres) and migrations
//	├── audit/           # Authentication attempt log
//	└── users/           # User lookup and persistence
//
// # Usage
//
//	db, err := database.NewDatabase(cfg.Database, logger)
//	repo := users.NewRepository(db.DB)
//	user, err := repo.FindByUsername(ctx, "alice")
//
// Consumer packages hold the compile-time interface checks, e.g.
// var _ auth.UserStore = (*users.Repository)(nil) lives in auth.
package database
