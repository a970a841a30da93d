package middleware

import (
	"net/http" // HTTP status codes

	"fitquest/internal/session" // Session resolution

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// SessionAuth resolves the bearer token to an active user on each request.
// Missing header, unknown token, expired session (pruned as a side effect)
// and disabled account all fail alike with a generic Unauthorized.
func SessionAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present
		if authHeader == "" {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		token := session.TokenFromHeader(authHeader) // Extract the token (Bearer prefix optional)
		resolved, err := session.Resolve(db, token)  // Resolve the token to a session
		if err != nil {
			// Unknown, expired or store failure all read the same to the caller
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Disabled accounts cannot authorize
		if !resolved.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("userID", resolved.UserID) // Store userID in context; the sole scoping key downstream
		c.Next()                         // Proceed to the next handler
	}
}
