package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"token-registry.backend/pkg/jwt"
	"token-registry.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// CallerAddressKey is the context key for the authenticated wallet address
	CallerAddressKey = "callerAddress"
)

// AuthMiddleware validates the bearer token and stores the caller address
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			logger.Warn(ctx, "Authorization header is missing", zap.String("path", c.Request.URL.Path))
			abortUnauthenticated(c, "Authorization header is required")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			logger.Warn(ctx, "Invalid authorization format", zap.String("path", c.Request.URL.Path))
			abortUnauthenticated(c, "Invalid authorization format. Use: Bearer <token>")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			logger.Warn(ctx, "Token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			if errors.Is(err, jwt.ErrExpiredToken) {
				abortUnauthenticated(c, "Token has expired")
				return
			}
			abortUnauthenticated(c, "Invalid token")
			return
		}

		caller := claims.Address()
		c.Set(CallerAddressKey, caller)
		c.Request = c.Request.WithContext(context.WithValue(ctx, logger.CallerKey, caller.Hex()))

		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    "UNAUTHENTICATED",
		"message": message,
	})
}

// GetCallerAddress gets the authenticated address from context
func GetCallerAddress(c *gin.Context) (common.Address, bool) {
	v, exists := c.Get(CallerAddressKey)
	if !exists {
		return common.Address{}, false
	}
	addr, ok := v.(common.Address)
	return addr, ok
}
