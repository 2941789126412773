package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/interfaces/http/response"
	"cardswap.backend/pkg/jwt"
	"cardswap.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// ActorKey is the gin context key for the authenticated actor
	ActorKey = "actor"
)

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	Verify(tokenString string) (*jwt.Claims, error)
}

// AuthMiddleware resolves the bearer token into an Actor.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			response.ErrorWithCode(c, http.StatusUnauthorized, domainerrors.KindUnauthorized, "Authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.ErrorWithCode(c, http.StatusUnauthorized, domainerrors.KindUnauthorized, "Invalid authorization format. Use: Bearer <token>")
			return
		}

		claims, err := verifier.Verify(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			logger.Debug(c.Request.Context(), "Token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrExpiredToken) {
				msg = "Token has expired"
			}
			response.ErrorWithCode(c, http.StatusUnauthorized, domainerrors.KindUnauthorized, msg)
			return
		}

		role := entities.UserRoleUser
		if claims.IsAdmin() {
			role = entities.UserRoleAdmin
		}
		actor := entities.Actor{ID: claims.UserID, Role: role}
		c.Set(ActorKey, actor)

		ctx := context.WithValue(c.Request.Context(), logger.ActorIDKey, actor.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetActor returns the actor set by AuthMiddleware.
func GetActor(c *gin.Context) (entities.Actor, bool) {
	v, exists := c.Get(ActorKey)
	if !exists {
		return entities.Actor{}, false
	}
	actor, ok := v.(entities.Actor)
	return actor, ok
}

// RequireAdmin rejects non-admin actors.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			response.ErrorWithCode(c, http.StatusUnauthorized, domainerrors.KindUnauthorized, "User not authenticated")
			return
		}
		if !actor.IsAdmin() {
			response.ErrorWithCode(c, http.StatusForbidden, domainerrors.KindForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}
