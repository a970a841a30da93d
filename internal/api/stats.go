package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"fitquest/internal/progress" // Progress ledger
	"fitquest/internal/utils"    // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UpdateStatsHandler applies a sparse update to the caller's progress counters
func UpdateStatsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var update progress.StatsUpdate // Bind JSON request to the closed optional-field struct
		if err := c.ShouldBindJSON(&update); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Apply the update; only supplied fields are written
		if err := progress.ApplyStatsUpdate(db, userID.(uint), update); err != nil {
			switch {
			case errors.Is(err, progress.ErrNoFields):
				// Empty update set is a no-op error
				c.JSON(http.StatusBadRequest, gin.H{"error": "No data to update"})
			case errors.Is(err, progress.ErrNotFound):
				// Unreachable behind the session gate, reported anyway
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			default:
				// Log the store error; the client sees generic text only
				logrus.WithFields(logrus.Fields{
					"user_id": userID,      // User ID
					"error":   err.Error(), // Error message
				}).Error("Stats update failed") // Log update failure
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
			}
			return
		}
		// Invalidate the cached profile so verify reflects the new counters
		ctx := context.Background()                                           // Context for Redis operations
		_ = utils.DeleteCache(ctx, rdb, utils.ProfileCacheKey(userID.(uint))) // Invalidate profile cache
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Stats updated successfully"})
	}
}
