package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/config"
	"github.com/mrlokans/authgate/internal/database/users"
	"github.com/mrlokans/authgate/internal/entrypoint"
)

// IssueTokenCommand prints a bearer token for an existing user.
type IssueTokenCommand struct {
	Username     string
	DatabasePath string

	Stdout io.Writer
}

func NewIssueTokenCommand() *IssueTokenCommand {
	return &IssueTokenCommand{Stdout: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *IssueTokenCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Existing username")
	fs.StringVar(&cmd.DatabasePath, "db", "", "SQLite database path (defaults to DATABASE_PATH)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s issue-token -username NAME [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print a bearer token signed with AUTH_JWT_SECRET.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Username == "" {
		return errors.New("-username is required")
	}
	return nil
}

// Run executes the command
func (cmd *IssueTokenCommand) Run() error {
	cfg := config.NewConfig()
	if cmd.DatabasePath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = cmd.DatabasePath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	components, err := entrypoint.Build(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer components.Close()

	ctx := context.Background()
	user, err := components.Service.UserByUsername(ctx, cmd.Username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return fmt.Errorf("user %q does not exist", cmd.Username)
		}
		return err
	}

	token, err := components.Service.IssueToken(ctx, user)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Stdout, token)
	return nil
}
