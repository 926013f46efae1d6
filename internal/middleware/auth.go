package middleware

import (
	"net/http"
	"strings"

	"github.com/adeshpatel700-rgb/Mockmate/internal/dto"
	"github.com/adeshpatel700-rgb/Mockmate/pkg/auth"
	"github.com/gin-gonic/gin"
)

// ContextUserIDKey is where the authenticated user's id lands in the gin context.
const ContextUserIDKey = "userID"

// RequireAuth validates the bearer token and stores the caller's user id.
func RequireAuth(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Missing or malformed authorization header"})
			return
		}

		claims, err := jwtSvc.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid or expired token"})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
