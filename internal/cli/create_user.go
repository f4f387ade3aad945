package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/auth"
	"github.com/mrlokans/authgate/internal/config"
	"github.com/mrlokans/authgate/internal/entrypoint"
)

// CreateUserCommand registers a user from the command line.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	DatabasePath string

	Stdin  io.Reader
	Stdout io.Writer
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{Stdin: os.Stdin, Stdout: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username (3-64 characters: letters, digits, underscore, hyphen)")
	fs.StringVar(&cmd.Email, "email", "", "Optional email address")
	fs.StringVar(&cmd.Password, "password", "", "Password; read from the first line of stdin when omitted")
	fs.StringVar(&cmd.DatabasePath, "db", "", "SQLite database path (defaults to DATABASE_PATH)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username NAME [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user that can log in with the local strategy.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  echo 's3cret-pass' | %s create-user -username alice\n", os.Args[0])
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
func (cmd *CreateUserCommand) Run() error {
	cfg := config.NewConfig()
	if cmd.DatabasePath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = cmd.DatabasePath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	password := cmd.Password
	if password == "" {
		var err error
		if password, err = readLine(cmd.Stdin); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	components, err := entrypoint.Build(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer components.Close()

	user, err := components.Service.Register(context.Background(), cmd.Username, cmd.Email, password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(cmd.Stdout, "Created user %q (id %d)\n", user.Username, user.ID)
	return nil
}

func readLine(r io.Reader) (string, error) {
	if r == nil {
		return "", auth.ErrPasswordRequired
	}
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", auth.ErrPasswordRequired
	}
	return strings.TrimRight(scanner.Text(), "\r"), nil
}
