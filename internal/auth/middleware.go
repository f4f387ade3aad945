package auth

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/authgate/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUser      = "auth_user"
	ContextKeyUserID    = "auth_user_id"
	ContextKeyUsername  = "auth_username"
	ContextKeyRole      = "auth_role"
	ContextKeyStrategy  = "auth_strategy"
	ContextKeyRequestID = "request_id"

	// Username presented to the local strategy, set even when the attempt fails
	ContextKeyAttemptedUsername = "auth_attempted_username"
)

// RequestIDHeader carries the correlation ID in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

type requestIDKey struct{}

// RequestIDMiddleware assigns every request a correlation ID, reusing a sane inbound one.
// The ID is available from the gin context and from c.Request.Context().
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Set(ContextKeyRequestID, id)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the correlation ID or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// setUserContext stores user information in the Gin context.
func setUserContext(c *gin.Context, user *entities.User, strategy string) {
	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyRole, user.Role)
	c.Set(ContextKeyStrategy, strategy)
}

// Helper functions to extract auth data from Gin context

// CurrentUser returns the user stored by a successful strategy, or nil.
func CurrentUser(c *gin.Context) *entities.User {
	if v, exists := c.Get(ContextKeyUser); exists {
		if user, ok := v.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if the request is not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}

// GetStrategy returns the name of the strategy that authenticated the request.
func GetStrategy(c *gin.Context) string {
	return c.GetString(ContextKeyStrategy)
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
