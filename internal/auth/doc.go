// Package auth provides request authentication for the HTTP API.
//
// Two strategies are registered with an Authenticator:
//   - "local": username and password checked against the bcrypt hash stored on the user
//   - "jwt": HS256 bearer token from the Authorization header, resolved to a user by ID
//
// Every strategy call yields exactly one Outcome: Success(user), Rejected(reason)
// or Failed(err). The Authenticator middleware turns the outcome into a response.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<at least 32 bytes>   # required, startup fails without it
//	AUTH_TOKEN_EXPIRY=168h                # issued token lifetime
//	AUTH_BCRYPT_COST=12                   # bcrypt cost factor for new passwords
//	AUTH_USERNAME_FIELD=Username          # login body field names
//	AUTH_PASSWORD_FIELD=Password
//
// # Usage
//
//	codec, _ := auth.NewTokenCodec([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenExpiry, cfg.Auth.TokenIssuer)
//	authenticator := auth.NewAuthenticator(logger).
//		Use(auth.NewLocalStrategy(repo, logger, auth.LocalOptions{})).
//		Use(auth.NewJWTStrategy(repo, codec, logger))
//	router.POST("/login", authenticator.Authenticate(auth.StrategyLocal), loginHandler)
//	router.GET("/users/me", authenticator.Authenticate(auth.StrategyJWT), meHandler)
//
// Extract the user in handlers:
//
//	user := auth.CurrentUser(c)
package auth
