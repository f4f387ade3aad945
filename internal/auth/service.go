package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/config"
	"github.com/mrlokans/authgate/internal/database/users"
	"github.com/mrlokans/authgate/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// UserRepository is the user store plus the writes registration and login need.
type UserRepository interface {
	UserStore
	Create(ctx context.Context, user *entities.User) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

var _ UserRepository = (*users.Repository)(nil)

// Service handles account registration and token issue.
type Service struct {
	repo   UserRepository
	codec  *TokenCodec
	config config.Auth
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo UserRepository, codec *TokenCodec, cfg config.Auth, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		codec:  codec,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a user with the given password. Email is optional.
// Returns users.ErrUserExists if the username is taken.
func (s *Service) Register(ctx context.Context, username, email, password string) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}
	// RFC 5321 limit is 254
	if email != "" && (len(email) > 254 || !emailPattern.MatchString(email)) {
		return nil, ErrEmailInvalid
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         entities.UserRoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("request_id", RequestIDFromContext(ctx)),
	)
	return user, nil
}

// IssueToken mints a bearer token for an authenticated user and records the login time.
func (s *Service) IssueToken(ctx context.Context, user *entities.User) (string, error) {
	token, err := s.codec.Issue(user)
	if err != nil {
		return "", err
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		// best effort, the token is already issued
		s.logger.Warn("failed to record login time", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	return token, nil
}

// UserByUsername looks up a user for offline tooling.
func (s *Service) UserByUsername(ctx context.Context, username string) (*entities.User, error) {
	return s.repo.FindByUsername(ctx, username)
}
