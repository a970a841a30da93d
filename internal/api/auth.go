package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"strings"  // String manipulation
	"time"     // Cache TTLs

	"fitquest/internal/domain"  // Importing domain models
	"fitquest/internal/session" // Session lifecycle
	"fitquest/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
	"gorm.io/gorm"                 // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Username  string  `json:"username" binding:"required"`  // Username must be provided
	Password  string  `json:"password" binding:"required"`  // Password must be provided
	Character string  `json:"character" binding:"required"` // Character class must be provided
	Email     *string `json:"email"`                        // Email is optional
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string      `json:"token"` // Opaque session token
	User  domain.User `json:"user"`  // User record, digest excluded via json tags
}

// characterClasses is the closed set of playable classes
var characterClasses = map[string]bool{
	"warrior": true, // Melee class
	"mage":    true, // Caster class
	"ranger":  true, // Ranged class
	"monk":    true, // Martial class
}

// isValidEmail checks the email shape (local@domain.tld)
func isValidEmail(email string) bool {
	matched, _ := regexp.MatchString(`^[^@\s]+@[^@\s]+\.[^@\s]+$`, email) // Regex for a plausible address
	return matched                                                        // Return whether it matched
}

// RegisterHandler creates a new user account and an initial session
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		req.Username = strings.TrimSpace(req.Username) // Trim whitespace from username
		// Validate username length
		if len(req.Username) < 3 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be at least 3 characters long"})
			return
		}
		// Validate password length
		if len(req.Password) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters long"})
			return
		}
		// Validate character class against the closed set
		if !characterClasses[req.Character] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character class"})
			return
		}
		// Validate email shape if one was provided
		if req.Email != nil {
			trimmed := strings.TrimSpace(*req.Email) // Trim whitespace from email
			if trimmed == "" {
				req.Email = nil // Empty email is treated as absent
			} else if !isValidEmail(trimmed) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
				return
			} else {
				req.Email = &trimmed // Store the trimmed address
			}
		}
		// Pre-check username uniqueness for a friendly error
		var count int64
		if err := db.Model(&domain.User{}).Where("username = ?", req.Username).Count(&count).Error; err == nil && count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}
		// Pre-check email uniqueness if provided
		if req.Email != nil {
			if err := db.Model(&domain.User{}).Where("email = ?", *req.Email).Count(&count).Error; err == nil && count > 0 {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
				return
			}
		}
		// Hash the password
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}
		// Create the user; the unique constraints close the race the
		// pre-checks leave open under concurrent registrations
		user := domain.User{
			Username:       req.Username,  // Unique username
			Email:          req.Email,     // Optional unique email
			PasswordHash:   string(hash),  // Bcrypt digest
			CharacterClass: req.Character, // Chosen class
		}
		if err := db.Create(&user).Error; err != nil {
			// A duplicate key here means a concurrent registration won
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
				return
			}
			// Log the store error; the client sees generic text only
			logrus.WithFields(logrus.Fields{
				"username": req.Username, // Attempted username
				"error":    err.Error(),  // Error message
			}).Error("User creation failed") // Log creation failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}
		// Issue the initial session so registration logs the user in
		token, err := session.Issue(db, user.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // New user ID
				"error":   err.Error(), // Error message
			}).Error("Session issue failed") // Log session failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}
		// Reload to pick up column defaults (level, counters, enabled flag)
		if err := db.First(&user, user.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID,                         // New user ID
			"username":  user.Username,                   // Username
			"character": user.CharacterClass,             // Character class
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("User registered") // Log registration success
		// Return the token and the user record
		c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "token": token, "user": user})
	}
}

// LoginHandler authenticates a user and returns a fresh session token
func LoginHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing username or password"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
			// Unknown user reads identically to a bad password
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		// Disabled accounts are rejected before the digest comparison
		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
			return
		}
		// Compare provided password with stored digest
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		// Issue a session; older sessions beyond the cap are pruned
		token, err := session.Issue(db, user.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // User ID
				"error":   err.Error(), // Error message
			}).Error("Session issue failed") // Log session failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}
		// Log successful login
		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID,                         // User ID
			"username":  user.Username,                   // Username
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("User logged in") // Log login success
		// Return the token and the user record
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
	}
}

// LogoutHandler revokes the presented session token.
// Logout is idempotent: revoking an unknown token still reports success.
func LogoutHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// A token must be presented, even if it no longer exists
		if authHeader == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No session token provided"})
			return
		}
		token := session.TokenFromHeader(authHeader) // Extract the token
		// Revoke the session; ErrNotFound is deliberately ignored
		if err := session.Revoke(db, token); err != nil && !errors.Is(err, session.ErrNotFound) {
			logrus.WithFields(logrus.Fields{
				"error": err.Error(), // Error message
			}).Error("Logout failed") // Log revocation failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
			return
		}
		// Return success regardless of whether a session existed
		c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
	}
}

// VerifyHandler validates the presented token and returns the user record.
// Unlike the generic middleware it reports distinct failure reasons.
func VerifyHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if a token was presented
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No session token provided"})
			return
		}
		token := session.TokenFromHeader(authHeader) // Extract the token
		resolved, err := session.Resolve(db, token)  // Resolve the token to a session
		if err != nil {
			switch {
			case errors.Is(err, session.ErrNotFound):
				// Token matches no session
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session token"})
			case errors.Is(err, session.ErrExpired):
				// Session expired and was pruned during the lookup
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			default:
				// Store failure; log it, keep the client text generic
				logrus.WithFields(logrus.Fields{
					"error": err.Error(), // Error message
				}).Error("Session resolution failed") // Log resolution failure
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
			}
			return
		}
		// Disabled accounts fail verification even with a live session
		if !resolved.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
			return
		}
		ctx := context.Background()                                  // Context for Redis operations
		cacheKey := utils.ProfileCacheKey(resolved.UserID)           // Cache key for the profile
		var user domain.User                                         // User struct to hold data
		found, cacheErr := utils.GetCache(ctx, rdb, cacheKey, &user) // Try to get from cache
		// If found in cache, return it
		if cacheErr == nil && found {
			c.JSON(http.StatusOK, gin.H{"message": "Session valid", "user": user, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.First(&user, resolved.UserID).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": resolved.UserID, // User ID
				"error":   err.Error(),     // Error message
			}).Error("Profile fetch failed") // Log fetch failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, user, 60*time.Second) // Cache the profile for 60 seconds
		c.JSON(http.StatusOK, gin.H{"message": "Session valid", "user": user, "cached": false})
	}
}
