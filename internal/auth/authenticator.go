package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/database/users"
	"github.com/mrlokans/authgate/internal/entities"
)

// Strategy names
const (
	StrategyLocal = "local"
	StrategyJWT   = "jwt"
)

// UserStore is the read side of the user repository the strategies need.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindByID(ctx context.Context, id uint) (*entities.User, error)
}

var _ UserStore = (*users.Repository)(nil)

// Strategy authenticates a single request.
type Strategy interface {
	Name() string
	Authenticate(c *gin.Context) Outcome
}

// Attempt describes one finished strategy run.
type Attempt struct {
	Strategy  string
	Username  string
	Outcome   Outcome
	RequestID string
	ClientIP  string
	UserAgent string
}

// AttemptObserver is notified after every strategy run, before the response is written.
type AttemptObserver interface {
	ObserveAttempt(ctx context.Context, attempt Attempt)
}

// Authenticator holds the registered strategies and produces per-route middleware.
type Authenticator struct {
	strategies map[string]Strategy
	observers  []AttemptObserver
	logger     *zap.Logger
}

func NewAuthenticator(logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		strategies: make(map[string]Strategy),
		logger:     logger,
	}
}

// Use registers s under its name, replacing any strategy with the same name.
func (a *Authenticator) Use(s Strategy) *Authenticator {
	a.strategies[s.Name()] = s
	return a
}

// Observe adds o to the observers notified of every attempt.
func (a *Authenticator) Observe(o AttemptObserver) *Authenticator {
	a.observers = append(a.observers, o)
	return a
}

func (a *Authenticator) Strategy(name string) (Strategy, bool) {
	s, ok := a.strategies[name]
	return s, ok
}

// Authenticate returns middleware that runs the named strategy and either
// stores the user in the context or aborts the request.
// It panics if no strategy is registered under name, since routes are wired at startup.
func (a *Authenticator) Authenticate(name string) gin.HandlerFunc {
	strategy, ok := a.strategies[name]
	if !ok {
		panic(fmt.Sprintf("auth: unknown strategy %q", name))
	}

	return func(c *gin.Context) {
		outcome := strategy.Authenticate(c)
		a.notify(c, name, outcome)

		switch outcome.Kind {
		case OutcomeSuccess:
			if outcome.User == nil {
				a.abortWithError(c, name, errors.New("strategy returned success without a user"))
				return
			}
			setUserContext(c, outcome.User, name)
			c.Next()
		case OutcomeRejected:
			status := outcome.Status
			if status == 0 {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"message": outcome.Reason})
		default:
			a.abortWithError(c, name, outcome.Err)
		}
	}
}

func (a *Authenticator) notify(c *gin.Context, strategy string, outcome Outcome) {
	if len(a.observers) == 0 {
		return
	}

	attempt := Attempt{
		Strategy:  strategy,
		Username:  c.GetString(ContextKeyAttemptedUsername),
		Outcome:   outcome,
		RequestID: GetRequestID(c),
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if outcome.User != nil {
		attempt.Username = outcome.User.Username
	}

	for _, o := range a.observers {
		o.ObserveAttempt(c.Request.Context(), attempt)
	}
}

// abortWithError answers a strategy error. A user that vanished between token
// issue and use is reported like any other rejection.
func (a *Authenticator) abortWithError(c *gin.Context, strategy string, err error) {
	if errors.Is(err, users.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	a.logger.Error("authentication failed",
		zap.String("strategy", strategy),
		zap.String("request_id", GetRequestID(c)),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}
