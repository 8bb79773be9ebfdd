package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"accountsvc/internal/services"
)

type forbidden struct {
	Success    int    `json:"success"`
	StatusCode int    `json:"statusCode"`
	Msg        string `json:"msg"`
}

func abortForbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, forbidden{
		Success:    0,
		StatusCode: http.StatusForbidden,
		Msg:        msg,
	})
}

// AuthMiddleware validates the Authorization bearer token and stores the
// authenticated user id in the gin context under "user_id".
func AuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// preflight never carries credentials
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			abortForbidden(c, "Forbidden: No token provided")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortForbidden(c, "Forbidden: No token provided")
			return
		}
		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			abortForbidden(c, "Forbidden: No token provided")
			return
		}

		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				abortForbidden(c, "Forbidden: Token expired")
				return
			}
			abortForbidden(c, "Forbidden: Invalid token")
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
