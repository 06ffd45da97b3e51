package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/internal/interfaces/http/response"
	"scholarship-fund.backend/pkg/jwt"
	"scholarship-fund.backend/pkg/logger"
	"scholarship-fund.backend/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// SessionHeader carries a session id issued at sign-in
	SessionHeader = "X-Session-Id"
	// CallerKey is the context key for the caller's wallet address
	CallerKey = "callerAddress"
)

// SessionReader resolves a session id to its stored tokens
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
}

// OwnerReader returns the current registry owner
type OwnerReader interface {
	Owner(ctx context.Context) (common.Address, error)
}

// AuthMiddleware authenticates the caller from a Bearer access token or,
// failing that, from a session id
func AuthMiddleware(jwtService *jwt.JWTService, sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader(AuthorizationHeader); authHeader != "" {
			if !strings.HasPrefix(authHeader, BearerPrefix) {
				abortUnauthorized(c, "Invalid authorization format. Use: Bearer <token>")
				return
			}
			tokenString = strings.TrimPrefix(authHeader, BearerPrefix)
		} else if sessionID := c.GetHeader(SessionHeader); sessionID != "" && sessions != nil {
			session, err := sessions.GetSession(c.Request.Context(), sessionID)
			if err != nil || session == nil {
				logger.Warn(c.Request.Context(), "Session lookup failed", zap.Error(err))
				abortUnauthorized(c, "Invalid session")
				return
			}
			tokenString = session.AccessToken
		}

		if tokenString == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}
		if !common.IsHexAddress(claims.Address) {
			abortUnauthorized(c, "Invalid token")
			return
		}

		caller := common.HexToAddress(claims.Address)
		c.Set(CallerKey, caller)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.CallerKey, caller.Hex()))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    domainerrors.CodeUnauthorized,
		"message": message,
	})
}

// GetCaller returns the authenticated wallet address
func GetCaller(c *gin.Context) (common.Address, bool) {
	v, exists := c.Get(CallerKey)
	if !exists {
		return common.Address{}, false
	}
	addr, ok := v.(common.Address)
	return addr, ok
}

// RequireOwner admits only the current registry owner. The owner is read
// live, so a token issued before an ownership transfer loses access.
func RequireOwner(owners OwnerReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		owner, err := owners.Owner(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if owner != caller {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    domainerrors.CodeUnauthorized,
				"message": domainerrors.ErrCallerNotOwner.Error(),
			})
			return
		}
		c.Next()
	}
}
