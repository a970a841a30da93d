package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Record timestamps and cache TTLs

	"fitquest/internal/domain" // Importing domain models
	"fitquest/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// SaveHealthRequest represents a health measurement submission
type SaveHealthRequest struct {
	Weight       *float64 `json:"weight" binding:"required"` // Weight must be provided
	Height       *float64 `json:"height" binding:"required"` // Height must be provided
	BMI          *float64 `json:"bmi"`                       // Optional, stored as supplied
	TargetWeight *float64 `json:"target_weight"`             // Optional goal weight
	StartWeight  *float64 `json:"start_weight"`              // Optional starting weight
}

// SaveHealthHandler appends a health record for the caller
func SaveHealthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req SaveHealthRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Weight and height are required"})
			return
		}
		record := domain.HealthRecord{
			UserID:       userID.(uint),    // Owning user from the session
			Weight:       *req.Weight,      // Mandatory weight
			Height:       *req.Height,      // Mandatory height
			BMI:          req.BMI,          // Pass-through, never computed here
			TargetWeight: req.TargetWeight, // Optional goal weight
			StartWeight:  req.StartWeight,  // Optional starting weight
			RecordedAt:   time.Now(),       // Measurement timestamp
		}
		// Append the record; history is retained, never pruned
		if err := db.Create(&record).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Health record save failed") // Log save failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Save failed"})
			return
		}
		// Invalidate the cached latest record
		ctx := context.Background()                                          // Context for Redis operations
		_ = utils.DeleteCache(ctx, rdb, utils.HealthCacheKey(userID.(uint))) // Invalidate health cache
		// Return the new record id
		c.JSON(http.StatusCreated, gin.H{"message": "Health data saved successfully", "health_id": record.ID})
	}
}

// GetHealthHandler returns the caller's most recent health record.
// A user with no records gets a successful response with a null payload.
func GetHealthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                               // Context for Redis operations
		cacheKey := utils.HealthCacheKey(userID.(uint))           // Cache key for the latest record
		var record domain.HealthRecord                            // Record struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &record) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"message": "Health data retrieved", "health_data": record, "cached": true})
			return
		}
		// Fetch the most recent record by measurement timestamp
		if err := db.Where("user_id = ?", userID).
			Order("recorded_at desc, id desc").
			First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// No records yet: an empty result, not a failure
				c.JSON(http.StatusOK, gin.H{"message": "No health data found", "health_data": nil})
				return
			}
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Health record fetch failed") // Log fetch failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Retrieval failed"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, record, 60*time.Second) // Cache the latest record for 60 seconds
		c.JSON(http.StatusOK, gin.H{"message": "Health data retrieved", "health_data": record, "cached": false})
	}
}
