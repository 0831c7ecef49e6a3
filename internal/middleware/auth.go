package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"civicdesk/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsKey is where Authenticate stores the verified token claims.
const ClaimsKey = "claims"

// Authenticate verifies the bearer token and attaches its claims to the
// request context.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ParseToken(token)
		if err != nil {
			if errors.Is(err, utils.ErrMissingSecret) {
				log.Println("[Auth] JWT_SECRET missing")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server misconfiguration."})
				return
			}
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose token does not carry one of the
// allowed roles. Must run after Authenticate.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		if claims.Role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Role not found in token"})
			return
		}

		for _, role := range allowedRoles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"message": "Access denied. Required role: " + strings.Join(allowedRoles, " or "),
		})
	}
}

// RequireUser limits a route to citizen tokens.
func RequireUser() gin.HandlerFunc {
	return RequireRole(utils.RoleUser)
}

// RequireAdmin limits a route to administrator tokens.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(utils.RoleAdmin)
}

// CurrentClaims returns the verified claims set by Authenticate, or nil.
func CurrentClaims(c *gin.Context) *utils.TokenClaims {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*utils.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
