package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/database/users"
	"github.com/mrlokans/authgate/internal/entities"
)

// AuthController handles account and login endpoints.
type AuthController struct {
	service       *Service
	authenticator *Authenticator
	logger        *zap.Logger
}

func NewAuthController(service *Service, authenticator *Authenticator, logger *zap.Logger) *AuthController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthController{
		service:       service,
		authenticator: authenticator,
		logger:        logger,
	}
}

// RegisterRoutes mounts the account endpoints on router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.POST("/users", ac.Register)
	router.POST("/login", ac.authenticator.Authenticate(StrategyLocal), ac.Login)
	router.GET("/users/me", ac.authenticator.Authenticate(StrategyJWT), ac.Me)
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	User  *entities.User `json:"user"`
	Token string         `json:"token"`
}

// Register creates an account. POST /users
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}

	user, err := ac.service.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"message": "user already exists"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			ac.logger.Error("registration failed", zap.String("request_id", GetRequestID(c)), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login runs after the local strategy and answers with a fresh token. POST /login
func (ac *AuthController) Login(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	token, err := ac.service.IssueToken(c.Request.Context(), user)
	if err != nil {
		ac.logger.Error("token issue failed", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{User: user, Token: token})
}

// Me returns the user behind the bearer token. GET /users/me
func (ac *AuthController) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func isValidationError(err error) bool {
	for _, target := range []error{
		ErrUsernameRequired,
		ErrPasswordRequired,
		ErrUsernameInvalid,
		ErrEmailInvalid,
		ErrPasswordTooShort,
		ErrPasswordTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
