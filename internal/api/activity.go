package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Activity dates and cache TTLs

	"fitquest/internal/domain"   // Importing domain models
	"fitquest/internal/progress" // Progress ledger
	"fitquest/internal/utils"    // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

const defaultActivityLimit = 50 // Default page size for the activity log

// AddActivityRequest represents a logged activity
type AddActivityRequest struct {
	ActivityType string     `json:"activity_type" binding:"required"`  // Activity type must be provided
	Duration     int        `json:"duration" binding:"required,gt=0"`  // Duration in minutes, must be positive
	XPEarned     *int       `json:"xp_earned" binding:"required"`      // XP must be provided (zero allowed)
	Calories     int        `json:"calories"`                          // Calories burned, defaults to 0
	Notes        *string    `json:"notes"`                             // Optional notes
	ActivityDate *time.Time `json:"activity_date"`                     // Optional, defaults to now
}

// AddActivityHandler records an activity and bumps the caller's counters
func AddActivityHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req AddActivityRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		// Default the activity date to now when unspecified
		activityDate := time.Now()
		if req.ActivityDate != nil {
			activityDate = *req.ActivityDate // Caller-supplied date
		}
		activity := domain.Activity{
			UserID:          userID.(uint),    // Owning user from the session, never the request
			ActivityType:    req.ActivityType, // Activity type
			DurationMinutes: req.Duration,     // Duration in minutes
			CaloriesBurned:  req.Calories,     // Calories burned
			Notes:           req.Notes,        // Optional notes
			XPEarned:        *req.XPEarned,    // XP awarded
			ActivityDate:    activityDate,     // When the activity happened
		}
		// Insert the record and bump the counters atomically, so a logged
		// activity can never exist without its counter update
		err := db.Transaction(func(tx *gorm.DB) error {
			// Create the activity record
			if err := tx.Create(&activity).Error; err != nil {
				return err // Return error to rollback
			}
			// total_activities++ and last_activity_date in one UPDATE
			return progress.IncrementActivityCount(tx, userID.(uint), activityDate)
		})
		// Handle transaction result
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":       userID,           // User ID
				"activity_type": req.ActivityType, // Activity type
				"error":         err.Error(),      // Error message
			}).Error("Activity log failed") // Log activity failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity"})
			return
		}
		// Log successful activity
		logrus.WithFields(logrus.Fields{
			"user_id":       userID,                          // User ID
			"activity_id":   activity.ID,                     // New activity ID
			"activity_type": req.ActivityType,                // Activity type
			"xp_earned":     *req.XPEarned,                   // XP awarded
			"timestamp":     time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Activity logged") // Log activity success
		// Invalidate cached activity pages and the profile counters
		ctx := context.Background()                                                  // Context for Redis operations
		utils.InvalidateActivityPages(ctx, rdb, userID.(uint), defaultActivityLimit) // Invalidate activity page cache
		_ = utils.DeleteCache(ctx, rdb, utils.ProfileCacheKey(userID.(uint)))        // Invalidate profile cache
		// Return the new activity id
		c.JSON(http.StatusCreated, gin.H{"message": "Activity logged successfully", "activity_id": activity.ID})
	}
}

// GetActivitiesHandler returns a page of the caller's activity log
func GetActivitiesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		limit := defaultActivityLimit // Default page size
		offset := 0                   // Default offset
		// If limit exists in query
		if l := c.Query("limit"); l != "" {
			// Convert limit to integer; negatives fall back to the default
			if v, err := strconv.Atoi(l); err == nil && v >= 0 {
				limit = v // Set limit if valid
			}
		}
		// If offset exists in query
		if o := c.Query("offset"); o != "" {
			// Convert offset to integer; negatives are clamped to 0
			if v, err := strconv.Atoi(o); err == nil && v >= 0 {
				offset = v // Set offset if valid
			}
		}
		cacheKey := utils.ActivityPageCacheKey(userID.(uint), limit, offset) // Cache key for this page
		ctx := context.Background()                                          // Context for Redis operations
		var cached struct {
			Activities []domain.Activity `json:"activities"` // List of activities
			Total      int64             `json:"total"`      // Total activities for the user
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"activities": cached.Activities, // Cached activities
				"total":      cached.Total,      // Total activities
				"cached":     true,              // From cache
			})
			return
		}
		var total int64 // Total count of activities
		// Count all activities for the user regardless of the page window
		if err := db.Model(&domain.Activity{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
			// If counting fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activities"})
			return
		}
		var activities []domain.Activity // Slice to hold activities
		// Fetch the requested page, most recent activity first
		if err := db.Where("user_id = ?", userID).
			Order("activity_date desc").
			Offset(offset).
			Limit(limit).
			Find(&activities).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activities"})
			return
		}
		cached.Activities = activities // Page items
		cached.Total = total           // Full count
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, cached, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{
			"activities": activities, // List of activities
			"total":      total,      // Total activities
			"cached":     false,      // Not from cache
		})
	}
}

// DeleteActivityHandler removes one of the caller's activities and
// reconciles the counters. Nonexistent ids and other users' activities
// fail with the identical error, leaking nothing about foreign records.
func DeleteActivityHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Parse the activity id from the path
		activityID, err := strconv.Atoi(c.Param("id"))
		if err != nil || activityID <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Activity ID is required"})
			return
		}
		var activity domain.Activity // Activity to delete
		// Fetch the activity and verify ownership in one lookup
		if err := db.First(&activity, activityID).Error; err != nil || activity.UserID != userID.(uint) {
			// Missing and foreign activities are indistinguishable
			c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found or unauthorized"})
			return
		}
		// Delete the record and lower the counter atomically
		err = db.Transaction(func(tx *gorm.DB) error {
			// Delete the activity row
			if err := tx.Delete(&domain.Activity{}, activity.ID).Error; err != nil {
				return err // Return error to rollback
			}
			// total_activities-- with a floor at 0; last_activity_date untouched
			return progress.DecrementActivityCount(tx, userID.(uint))
		})
		// Handle transaction result
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":     userID,      // User ID
				"activity_id": activity.ID, // Activity ID
				"error":       err.Error(), // Error message
			}).Error("Activity delete failed") // Log delete failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,                          // User ID
			"activity_id": activity.ID,                     // Activity ID
			"timestamp":   time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Activity deleted") // Log delete success
		// Invalidate cached activity pages and the profile counters
		ctx := context.Background()                                                  // Context for Redis operations
		utils.InvalidateActivityPages(ctx, rdb, userID.(uint), defaultActivityLimit) // Invalidate activity page cache
		_ = utils.DeleteCache(ctx, rdb, utils.ProfileCacheKey(userID.(uint)))        // Invalidate profile cache
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Activity deleted successfully"})
	}
}
