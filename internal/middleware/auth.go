package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"resiliencehub/helper"
	"resiliencehub/pkg/constants"
	"resiliencehub/pkg/token"

	"github.com/gin-gonic/gin"
)

// TokenVerifier checks a bearer session token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*token.Claims, error)
}

// Secured rejects requests without a valid bearer token and stores the
// caller's uid and user type on the context.
func Secured(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			helper.SendError(c, http.StatusUnauthorized, errors.New("authorization header required"), helper.ErrUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			helper.SendError(c, http.StatusUnauthorized, errors.New("bearer token required"), helper.ErrUnauthorized)
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			helper.SendError(c, http.StatusUnauthorized, errors.New("invalid token"), helper.ErrUnauthorized)
			return
		}

		c.Set(constants.Token, tokenString)
		c.Set(constants.UserID, claims.Subject)
		c.Set(constants.UserType, claims.UserType)

		c.Next()
	}
}

// AdminOnly must run after Secured.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, exists := c.Get(constants.UserType)
		if !exists {
			helper.SendError(c, http.StatusUnauthorized, errors.New("user type not found"), helper.ErrUnauthorized)
			return
		}

		if s, ok := userType.(string); !ok || s != constants.UserTypeAdmin {
			helper.SendError(c, http.StatusForbidden, errors.New("admin access required"), helper.ErrForbidden)
			return
		}

		c.Next()
	}
}
