package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/database/users"
)

// JWTStrategy authenticates requests carrying a bearer token issued by TokenCodec.
type JWTStrategy struct {
	store  UserStore
	codec  *TokenCodec
	logger *zap.Logger
}

func NewJWTStrategy(store UserStore, codec *TokenCodec, logger *zap.Logger) *JWTStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTStrategy{store: store, codec: codec, logger: logger}
}

func (s *JWTStrategy) Name() string { return StrategyJWT }

func (s *JWTStrategy) Authenticate(c *gin.Context) Outcome {
	return s.AuthenticateHeader(c.Request.Context(), c.GetHeader("Authorization"))
}

// AuthenticateHeader extracts and decodes the token from an Authorization
// header value, then resolves its user. A missing or undecodable token is a
// rejection and the store is never consulted.
func (s *JWTStrategy) AuthenticateHeader(ctx context.Context, header string) Outcome {
	token, err := ExtractBearerToken(header)
	if err != nil {
		return Rejected(MsgNoToken)
	}

	claims, err := s.codec.Decode(token)
	if err != nil {
		s.logger.Info("token rejected",
			zap.String("strategy", StrategyJWT),
			zap.String("request_id", RequestIDFromContext(ctx)),
			zap.Error(err),
		)
		return Rejected(MsgInvalidToken)
	}

	return s.Verify(ctx, claims)
}

// Verify resolves the user named by already verified claims. A user that no
// longer exists is reported as an error wrapping users.ErrNotFound.
// Claims without a user ID never reach the store; Decode refuses them too.
func (s *JWTStrategy) Verify(ctx context.Context, claims *Claims) Outcome {
	if claims == nil || claims.UserID == 0 {
		return Rejected(MsgInvalidToken)
	}

	user, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			s.logger.Error("user lookup failed",
				zap.String("strategy", StrategyJWT),
				zap.Uint("user_id", claims.UserID),
				zap.String("request_id", RequestIDFromContext(ctx)),
				zap.Error(err),
			)
		}
		return Failed(err)
	}

	s.logger.Debug("token verified",
		zap.String("strategy", StrategyJWT),
		zap.Uint("user_id", user.ID),
		zap.String("request_id", RequestIDFromContext(ctx)),
	)
	return Success(user)
}
