package middleware

import (
	"net/http"
	"strings"

	"acadia.dev/studentrecords/internal/repository"
	"acadia.dev/studentrecords/pkg/response"
	"acadia.dev/studentrecords/pkg/token"
	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	userRepo repository.UserRepository
	tokens   *token.Manager
}

func NewAuthMiddleware(userRepo repository.UserRepository, tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// RequireAuth verifies the bearer token and re-resolves the account by its
// claim subject, so tokens for accounts deleted or deactivated after
// issuance are rejected. The resolved account (hash already stripped by
// the lookup) is attached to the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		claims, err := m.tokens.Verify(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
			c.Abort()
			return
		}

		if !user.Active {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account is deactivated"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("user", user)
		c.Next()
	}
}

// RequireRoles passes when the authenticated account's role set intersects
// the route's permitted set. An empty permitted set means no restriction.
func (m *AuthMiddleware) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := response.GetUser(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		if !user.HasAnyRole(roles...) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			c.Abort()
			return
		}

		c.Next()
	}
}
