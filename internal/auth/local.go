package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/config"
	"github.com/mrlokans/authgate/internal/database/users"
)

// LocalOptions names the request fields holding the credentials.
type LocalOptions struct {
	UsernameField string
	PasswordField string
}

// LocalStrategy verifies a username and password against the stored hash.
type LocalStrategy struct {
	store         UserStore
	logger        *zap.Logger
	usernameField string
	passwordField string
}

func NewLocalStrategy(store UserStore, logger *zap.Logger, opts LocalOptions) *LocalStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.UsernameField == "" {
		opts.UsernameField = config.DefaultUsernameField
	}
	if opts.PasswordField == "" {
		opts.PasswordField = config.DefaultPasswordField
	}
	return &LocalStrategy{
		store:         store,
		logger:        logger,
		usernameField: opts.UsernameField,
		passwordField: opts.PasswordField,
	}
}

func (s *LocalStrategy) Name() string { return StrategyLocal }

// Authenticate reads the credentials from a JSON body, a form body or the query string.
func (s *LocalStrategy) Authenticate(c *gin.Context) Outcome {
	username, password := s.credentials(c)
	if username != "" {
		c.Set(ContextKeyAttemptedUsername, username)
	}
	if username == "" || password == "" {
		return RejectedWithStatus(MsgMissingCredentials, http.StatusBadRequest)
	}
	return s.Verify(c.Request.Context(), username, password)
}

// Verify checks the credentials. An unknown username and a wrong password are
// both rejections, with distinct messages. The password is never logged.
func (s *LocalStrategy) Verify(ctx context.Context, username, password string) Outcome {
	log := s.logger.With(
		zap.String("strategy", StrategyLocal),
		zap.String("username", username),
		zap.String("request_id", RequestIDFromContext(ctx)),
	)

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			log.Info("login rejected: unknown user")
			return Rejected(MsgIncorrectCredentials)
		}
		log.Error("user lookup failed", zap.Error(err))
		return Failed(err)
	}

	if !user.ValidatePassword(password) {
		log.Info("login rejected: password mismatch", zap.Uint("user_id", user.ID))
		return Rejected(MsgIncorrectPassword)
	}

	log.Debug("login verified", zap.Uint("user_id", user.ID))
	return Success(user)
}

func (s *LocalStrategy) credentials(c *gin.Context) (string, string) {
	if c.ContentType() == binding.MIMEJSON {
		var body map[string]any
		// the body stays readable for handlers further down the chain
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err == nil {
			username, _ := body[s.usernameField].(string)
			password, _ := body[s.passwordField].(string)
			return username, password
		}
		return "", ""
	}

	username := c.PostForm(s.usernameField)
	if username == "" {
		username = c.Query(s.usernameField)
	}
	password := c.PostForm(s.passwordField)
	if password == "" {
		password = c.Query(s.passwordField)
	}
	return username, password
}
