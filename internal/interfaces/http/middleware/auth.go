package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/pkg/jwt"
	"nft-swapper.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// CallerAddressKey is the context key for the authenticated wallet
	CallerAddressKey = "callerAddress"
)

// AuthMiddleware accepts a wallet JWT and records its address as the caller
// of the request.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			logger.Debug(c.Request.Context(), "Authorization header is missing", zap.String("path", c.Request.URL.Path))
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization format. Use: Bearer <token>")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			logger.Debug(c.Request.Context(), "Token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
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
		c.Set(CallerAddressKey, caller)
		ctx := context.WithValue(c.Request.Context(), logger.WalletKey, caller.Hex())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetCallerAddress gets the authenticated wallet from context
func GetCallerAddress(c *gin.Context) (common.Address, bool) {
	v, exists := c.Get(CallerAddressKey)
	if !exists {
		return common.Address{}, false
	}
	addr, ok := v.(common.Address)
	return addr, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    domainerrors.CodeUnauthorized,
		"message": message,
	})
}
